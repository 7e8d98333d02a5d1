package models

import "time"

type DeviceBooking struct {
	ID uint `gorm:"primaryKey" json:"id"`

	DeviceID   uint    `gorm:"not null;index:idx_booking_slot,priority:1" json:"deviceId"`
	Device     *Device `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"device,omitempty"`
	DeviceName string  `gorm:"size:150" json:"deviceName"`

	UserID      uint   `gorm:"not null;index" json:"userId"`
	User        *User  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"user,omitempty"`
	AccountName string `gorm:"size:100" json:"accountName"`
	Group       string `gorm:"column:group_name;size:100" json:"group"`

	CodeBA string `gorm:"column:code_ba;size:50;not null" json:"codeBA"`
	NameBA string `gorm:"column:name_ba;size:150;not null" json:"nameBA"`

	UsageTime string `gorm:"size:20;not null;index:idx_booking_slot,priority:3" json:"usageTime"`
	UsageDay  string `gorm:"size:10;not null;index:idx_booking_slot,priority:2" json:"usageDay"`

	Priority string `gorm:"size:20;not null;default:'normal'" json:"priority"`
	Purpose  string `gorm:"size:255" json:"purpose,omitempty"`
	Status   string `gorm:"size:20;not null;default:'pending';index" json:"status"`
	Note     string `gorm:"size:500" json:"note,omitempty"`

	EditRequest EditRequest `gorm:"embedded;embeddedPrefix:edit_request_" json:"editRequest"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// EditRequest is the owner's request to unlock a pending booking for edits.
// A zero value means no request is open.
type EditRequest struct {
	RequesterID   *uint      `json:"requesterId,omitempty"`
	RequesterName string     `gorm:"size:100" json:"requesterName,omitempty"`
	Status        string     `gorm:"size:20" json:"status,omitempty"`
	RequestedAt   *time.Time `json:"requestedAt,omitempty"`
	Reason        string     `gorm:"size:500" json:"reason,omitempty"`

	ApproverID   *uint      `json:"approverId,omitempty"`
	ApproverName string     `gorm:"size:100" json:"approverName,omitempty"`
	ProcessedAt  *time.Time `json:"processedAt,omitempty"`
	ApproverNote string     `gorm:"size:500" json:"approverNote,omitempty"`
}

func (e EditRequest) IsEmpty() bool {
	return e.Status == ""
}
