package model

import "time"

// KeyRecord is one deduplicated (host, public key) pair. The content pair is
// the identity; KeyID is a surrogate assigned once by the store on first
// sighting and never reused.
type KeyRecord struct {
	KeyID      int64     `gorm:"column:key_id;primaryKey;autoIncrement"`
	Host       string    `gorm:"column:host;uniqueIndex:idx_keys_host_key"`
	Key        string    `gorm:"column:key;uniqueIndex:idx_keys_host_key"`
	Updated    time.Time `gorm:"column:updated"`
	Deprecated bool      `gorm:"column:deprecated;default:false"`
}

func (KeyRecord) TableName() string {
	return "keys"
}

// FlowAssociation is a membership row linking a key record to a named flow.
// A record may belong to any number of flows; deleting the last association
// is the precondition for physically deleting the record.
type FlowAssociation struct {
	FlowID int64  `gorm:"column:flow_id;primaryKey;autoIncrement"`
	Name   string `gorm:"column:name;uniqueIndex:idx_flows_name_key"`
	KeyID  int64  `gorm:"column:key_id;uniqueIndex:idx_flows_name_key"`

	Record *KeyRecord `gorm:"foreignKey:KeyID;references:KeyID;constraint:OnDelete:CASCADE"`
}

func (FlowAssociation) TableName() string {
	return "flows"
}
