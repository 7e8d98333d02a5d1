package repository

import "github.com/BruksfildServices01/hospital-device-booking/internal/query"

var dayOps = []query.Operator{query.OpEq, query.OpNe, query.OpGt, query.OpGte, query.OpLt, query.OpLte, query.OpIn}

var BookingSchema = query.Schema{
	Fields: map[string]query.Field{
		"deviceId":    {Column: "device_id", Kind: query.Number},
		"deviceName":  {Column: "device_name", Kind: query.String},
		"userId":      {Column: "user_id", Kind: query.Number},
		"accountName": {Column: "account_name", Kind: query.String},
		"group":       {Column: "group_name", Kind: query.String},
		"codeBA":      {Column: "code_ba", Kind: query.String},
		"nameBA":      {Column: "name_ba", Kind: query.String},
		"usageDay":    {Column: "usage_day", Kind: query.String, Ops: dayOps},
		"usageTime":   {Column: "usage_time", Kind: query.String},
		"priority":    {Column: "priority", Kind: query.String},
		"purpose":     {Column: "purpose", Kind: query.String, NoSort: true},
		"status":      {Column: "status", Kind: query.String},
		"note":        {Column: "note", Kind: query.String, NoSort: true},
		"editRequest": {Column: "edit_request_status", Kind: query.String},
		"createdAt":   {Column: "created_at", Kind: query.Time},
		"updatedAt":   {Column: "updated_at", Kind: query.Time},
	},
	Relations: map[string]query.Relation{
		"device": {Preload: "Device", Columns: []string{"id", "name", "location"}, ForeignKey: "device_id"},
		"user":   {Preload: "User", Columns: []string{"id", "name", "email", "group_name"}, ForeignKey: "user_id"},
	},
	DefaultSort: []query.SortField{{Field: "createdAt", Desc: true}},
}

var DeviceSchema = query.Schema{
	Fields: map[string]query.Field{
		"code":      {Column: "code", Kind: query.String},
		"name":      {Column: "name", Kind: query.String},
		"location":  {Column: "location", Kind: query.String},
		"createdAt": {Column: "created_at", Kind: query.Time},
	},
	DefaultSort: []query.SortField{{Field: "createdAt", Desc: true}},
}

var UserSchema = query.Schema{
	Fields: map[string]query.Field{
		"email":     {Column: "email", Kind: query.String},
		"name":      {Column: "name", Kind: query.String},
		"role":      {Column: "role", Kind: query.String},
		"group":     {Column: "group_name", Kind: query.String},
		"isActive":  {Column: "is_active", Kind: query.Bool},
		"createdAt": {Column: "created_at", Kind: query.Time},
	},
	DefaultSort: []query.SortField{{Field: "createdAt", Desc: true}},
}

var AuditSchema = query.Schema{
	Fields: map[string]query.Field{
		"action":           {Column: "action", Kind: query.String},
		"actor.id":         {Column: "actor_id", Kind: query.String},
		"actor.name":       {Column: "actor_name", Kind: query.String},
		"actor.role":       {Column: "actor_role", Kind: query.String},
		"context.method":   {Column: "context_method", Kind: query.String},
		"context.endpoint": {Column: "context_endpoint", Kind: query.String},
		"createdAt":        {Column: "created_at", Kind: query.Time},
	},
	DefaultSort: []query.SortField{{Field: "createdAt", Desc: true}},
}
