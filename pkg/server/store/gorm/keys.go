package gorm

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"time"

	"github.com/keyflow/keyflow/pkg/model"
	"github.com/keyflow/keyflow/pkg/server/store"
)

// Ensure KeysStore implements store.KeysStore
var _ store.KeysStore = (*KeysStore)(nil)

// KeysStore implements store.KeysStore using GORM.
type KeysStore struct {
	db *gorm.DB
}

// NewKeysStore creates a new KeysStore.
func NewKeysStore(db *gorm.DB) *KeysStore {
	return &KeysStore{db: db}
}

// Transaction runs fn inside one database transaction.
func (s *KeysStore) Transaction(fn func(tx store.KeysTx) error) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&keysTx{db: tx})
	})
	return classify(err)
}

// SnapshotRows returns every (flow, host, key, deprecated) tuple.
func (s *KeysStore) SnapshotRows() ([]store.SnapshotRow, error) {
	var rows []store.SnapshotRow
	err := s.db.Table("flows").
		Select("flows.name AS flow, keys.host AS host, keys.key AS key, keys.deprecated AS deprecated").
		Joins("JOIN keys ON keys.key_id = flows.key_id").
		Scan(&rows).Error
	if err != nil {
		return nil, classify(err)
	}
	return rows, nil
}

type keysTx struct {
	db *gorm.DB
}

var _ store.KeysTx = (*keysTx)(nil)

func (t *keysTx) LookupRecords(pairs []store.HostKey) ([]store.KeyRecord, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	cond := t.db.Where("host = ? AND key = ?", pairs[0].Host, pairs[0].Key)
	for _, p := range pairs[1:] {
		cond = cond.Or("host = ? AND key = ?", p.Host, p.Key)
	}

	var records []model.KeyRecord
	if err := t.db.Model(&model.KeyRecord{}).Where(cond).Find(&records).Error; err != nil {
		return nil, classify(err)
	}

	out := make([]store.KeyRecord, 0, len(records))
	for _, r := range records {
		out = append(out, toStoreRecord(r))
	}
	return out, nil
}

func (t *keysTx) InsertRecords(pairs []store.HostKey, now time.Time) ([]store.KeyRecord, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	records := make([]model.KeyRecord, 0, len(pairs))
	for _, p := range pairs {
		records = append(records, model.KeyRecord{Host: p.Host, Key: p.Key, Updated: now})
	}
	if err := t.db.Create(&records).Error; err != nil {
		return nil, classify(err)
	}

	out := make([]store.KeyRecord, 0, len(records))
	for _, r := range records {
		out = append(out, toStoreRecord(r))
	}
	return out, nil
}

func (t *keysTx) TouchRecords(keyIDs []int64, now time.Time) error {
	if len(keyIDs) == 0 {
		return nil
	}
	err := t.db.Model(&model.KeyRecord{}).
		Where("key_id IN ?", keyIDs).
		Update("updated", now).Error
	return classify(err)
}

func (t *keysTx) EnsureAssociations(flow string, keyIDs []int64) error {
	if len(keyIDs) == 0 {
		return nil
	}

	assocs := make([]model.FlowAssociation, 0, len(keyIDs))
	for _, id := range keyIDs {
		assocs = append(assocs, model.FlowAssociation{Name: flow, KeyID: id})
	}
	err := t.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}, {Name: "key_id"}},
		DoNothing: true,
	}).Create(&assocs).Error
	return classify(err)
}

func (t *keysTx) SetDeprecated(flow string, hosts []string, deprecated bool, now time.Time) (int64, error) {
	if len(hosts) == 0 {
		return 0, nil
	}

	associated := t.db.Model(&model.FlowAssociation{}).
		Select("key_id").
		Where("name = ?", flow)

	res := t.db.Model(&model.KeyRecord{}).
		Where("host IN ?", hosts).
		Where("deprecated = ?", !deprecated).
		Where("key_id IN (?)", associated).
		Updates(map[string]interface{}{"deprecated": deprecated, "updated": now})
	if res.Error != nil {
		return 0, classify(res.Error)
	}
	return res.RowsAffected, nil
}

func (t *keysTx) RemoveHostAssociations(flow, host string) ([]int64, int64, error) {
	var keyIDs []int64
	err := t.db.Model(&model.FlowAssociation{}).
		Select("flows.key_id").
		Joins("JOIN keys ON keys.key_id = flows.key_id").
		Where("flows.name = ? AND keys.host = ?", flow, host).
		Scan(&keyIDs).Error
	if err != nil {
		return nil, 0, classify(err)
	}
	if len(keyIDs) == 0 {
		return nil, 0, nil
	}

	res := t.db.Where("name = ? AND key_id IN ?", flow, keyIDs).
		Delete(&model.FlowAssociation{})
	if res.Error != nil {
		return nil, 0, classify(res.Error)
	}
	return keyIDs, res.RowsAffected, nil
}

func (t *keysTx) DeleteOrphanRecords(keyIDs []int64) (int64, error) {
	if len(keyIDs) == 0 {
		return 0, nil
	}

	referenced := t.db.Model(&model.FlowAssociation{}).
		Select("key_id").
		Where("key_id IN ?", keyIDs)

	res := t.db.Where("key_id IN ?", keyIDs).
		Where("key_id NOT IN (?)", referenced).
		Delete(&model.KeyRecord{})
	if res.Error != nil {
		return 0, classify(res.Error)
	}
	return res.RowsAffected, nil
}

func toStoreRecord(r model.KeyRecord) store.KeyRecord {
	return store.KeyRecord{
		ID:         r.KeyID,
		Host:       r.Host,
		Key:        r.Key,
		Updated:    r.Updated,
		Deprecated: r.Deprecated,
	}
}
