package services

import (
	"fmt"

	"procurement-management-api/config"

	"gorm.io/gorm"
)

// Entity lock names. One lock per entity id serializes every
// read-modify-write on that entity.
func requisitionLock(id int) string   { return fmt.Sprintf("req:%d", id) }
func purchaseOrderLock(id int) string { return fmt.Sprintf("po:%d", id) }
func invoiceLock(id int) string       { return fmt.Sprintf("invoice:%d", id) }

const approvalMatrixLock = "approval_matrix"

// withEntityTx runs fn inside a transaction guarded by the named MySQL
// advisory lock. GET_LOCK and RELEASE_LOCK are per-connection, so the whole
// sequence is pinned to one pooled connection: acquire, begin, fn, commit,
// release. The lock is released only after the commit, which means the state
// mutation and its audit append are durable before any concurrent caller can
// observe the entity.
//
// A lock that cannot be acquired within the configured bounded wait fails
// with ContentionError; the request never queues indefinitely.
func withEntityTx(db *gorm.DB, lockName string, fn func(tx *gorm.DB) error) error {
	wait := config.GetSettings().LockWaitSeconds

	return db.Connection(func(conn *gorm.DB) error {
		var got int
		if err := conn.Raw("SELECT GET_LOCK(?, ?)", lockName, wait).Scan(&got).Error; err != nil {
			return err
		}
		if got != 1 {
			return &ContentionError{Resource: lockName}
		}
		defer func() {
			var released int
			conn.Raw("SELECT RELEASE_LOCK(?)", lockName).Scan(&released)
		}()

		tx := conn.Begin()
		if tx.Error != nil {
			return tx.Error
		}
		defer func() {
			if r := recover(); r != nil {
				tx.Rollback()
				panic(r)
			}
		}()

		if err := fn(tx); err != nil {
			tx.Rollback()
			return err
		}
		return tx.Commit().Error
	})
}
