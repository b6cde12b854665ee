package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/censustools/kintree/helper"
	"github.com/censustools/kintree/model"
	loadSql "github.com/censustools/kintree/sql"
)

// AuditDBHandlerFunctions defines the interface for audit-log database operations.
type AuditDBHandlerFunctions interface {
	LogAction(action string, details string) error
	SelectRecent(limit int) ([]*model.AuditLog, error)
}

// AuditDBHandler handles audit-log database operations. The core only
// appends entries; reading them back is for operators.
type AuditDBHandler struct {
	db *helper.Database
}

// NewAuditDBHandler creates a new audit-log database handler.
// If force is true, it will reload the SQL functions even if they already exist.
func NewAuditDBHandler(db *helper.Database, force bool) (*AuditDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	auditDbHandler := &AuditDBHandler{
		db: db,
	}

	err := loadSql.LoadAuditSql(auditDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load audit sql", err)
	}

	err = auditDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized AuditDBHandler")

	return auditDbHandler, nil
}

// CreateTable creates the 'audit_logs' table in the database.
// If the table already exists, it does not create it again.
func (h *AuditDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_audit_logs();`)
	if err != nil {
		log.Panicf("error initializing audit_logs table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table audit_logs")

	return nil
}

// LogAction appends an entry to the audit log
func (h *AuditDBHandler) LogAction(action string, details string) error {
	_, err := h.db.Instance.Exec(
		`SELECT * FROM insert_audit_log($1, $2, $3)`,
		action,
		"",
		details,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// SelectRecent retrieves the most recent audit-log entries
func (h *AuditDBHandler) SelectRecent(limit int) ([]*model.AuditLog, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_recent_audit_logs($1)`,
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var logs []*model.AuditLog
	for rows.Next() {
		entry := &model.AuditLog{}
		err := rows.Scan(
			&entry.ID,
			&entry.Action,
			&entry.User,
			&entry.Timestamp,
			&entry.Details,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		logs = append(logs, entry)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return logs, nil
}
