package audit

import "sync"

const DefaultLocale = "en"

// Labels maps entity fields to human readable names per locale.
type Labels struct {
	mu      sync.RWMutex
	entries map[string]map[string]map[string]string
}

func NewLabels() *Labels {
	return &Labels{entries: map[string]map[string]map[string]string{}}
}

func (l *Labels) Register(entity, field string, byLocale map[string]string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fields, ok := l.entries[entity]
	if !ok {
		fields = map[string]map[string]string{}
		l.entries[entity] = fields
	}
	fields[field] = byLocale
}

// Label falls back to the default locale and then to the raw field name.
func (l *Labels) Label(entity, field, locale string) string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	byLocale, ok := l.entries[entity][field]
	if !ok {
		return field
	}
	if v := byLocale[locale]; v != "" {
		return v
	}
	if v := byLocale[DefaultLocale]; v != "" {
		return v
	}
	return field
}

// All returns every label of entity in locale.
func (l *Labels) All(entity, locale string) map[string]string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := map[string]string{}
	for field, byLocale := range l.entries[entity] {
		v := byLocale[locale]
		if v == "" {
			v = byLocale[DefaultLocale]
		}
		if v == "" {
			v = field
		}
		out[field] = v
	}
	return out
}

func DefaultLabels() *Labels {
	l := NewLabels()
	for entity, fields := range defaultLabels {
		for field, byLocale := range fields {
			l.Register(entity, field, byLocale)
		}
	}
	return l
}

var defaultLabels = map[string]map[string]map[string]string{
	"device_booking": {
		"deviceId":   {"en": "Device", "vi": "Thiết bị"},
		"deviceName": {"en": "Device name", "vi": "Tên thiết bị"},
		"codeBA":     {"en": "Medical record code", "vi": "Mã bệnh án"},
		"nameBA":     {"en": "Medical record name", "vi": "Tên bệnh án"},
		"usageTime":  {"en": "Usage time", "vi": "Thời gian sử dụng"},
		"usageDay":   {"en": "Usage day", "vi": "Ngày sử dụng"},
		"priority":   {"en": "Priority", "vi": "Mức độ ưu tiên"},
		"purpose":    {"en": "Purpose", "vi": "Mục đích sử dụng"},
		"status":     {"en": "Status", "vi": "Trạng thái"},
		"note":       {"en": "Note", "vi": "Ghi chú"},
	},
	"device": {
		"code":        {"en": "Code", "vi": "Mã thiết bị"},
		"name":        {"en": "Name", "vi": "Tên"},
		"location":    {"en": "Location", "vi": "Vị trí"},
		"description": {"en": "Description", "vi": "Mô tả"},
	},
	"user": {
		"email":    {"en": "Email", "vi": "Email"},
		"name":     {"en": "Name", "vi": "Tên"},
		"role":     {"en": "Role", "vi": "Vai trò"},
		"group":    {"en": "Group", "vi": "Nhóm"},
		"isActive": {"en": "Status", "vi": "Trạng thái"},
	},
}
