package models

import "time"

// AdminLog is the append-only audit trail for back-office mutations.
// OldData/NewData hold JSON snapshots of the changed fields.
type AdminLog struct {
	ID         int64     `json:"id" db:"id"`
	AdminID    int64     `json:"adminId" db:"admin_id"`
	Action     string    `json:"action" db:"action"`
	EntityType string    `json:"entityType" db:"entity_type"`
	EntityID   string    `json:"entityId" db:"entity_id"`
	OldData    *string   `json:"oldData,omitempty" db:"old_data"`
	NewData    *string   `json:"newData,omitempty" db:"new_data"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}
