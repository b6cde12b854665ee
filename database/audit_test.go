package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditNewAuditDBHandler(t *testing.T) {
	database := initDB(t)

	t.Run("Valid call NewAuditDBHandler", func(t *testing.T) {
		auditDbHandler, err := NewAuditDBHandler(database, true)
		assert.NoError(t, err, "Expected NewAuditDBHandler to not return an error")
		require.NotNil(t, auditDbHandler, "Expected NewAuditDBHandler to return a non-nil instance")
		require.NotNil(t, auditDbHandler.db, "Expected NewAuditDBHandler to have a non-nil database instance")
	})

	t.Run("Invalid call NewAuditDBHandler with nil database", func(t *testing.T) {
		_, err := NewAuditDBHandler(nil, false)
		assert.Error(t, err, "Expected error when creating AuditDBHandler with nil database")
		assert.Contains(t, err.Error(), "database connection is nil", "Expected specific error message for nil database connection")
	})
}

func TestAuditLogAction(t *testing.T) {
	database := initDB(t)

	auditDbHandler, err := NewAuditDBHandler(database, true)
	require.NoError(t, err)

	t.Run("Log action and read it back", func(t *testing.T) {
		err := auditDbHandler.LogAction("merge_persons", "Merging 2 persons into primary")
		assert.NoError(t, err, "Expected LogAction to not return an error")

		logs, err := auditDbHandler.SelectRecent(5)
		assert.NoError(t, err, "Expected SelectRecent to not return an error")
		require.NotEmpty(t, logs, "Expected at least one audit entry")
		assert.Equal(t, "merge_persons", logs[0].Action, "Expected the most recent entry first")
		assert.Equal(t, "Merging 2 persons into primary", logs[0].Details)
		assert.WithinDuration(t, logs[0].Timestamp, time.Now(), 5*time.Second, "Expected the timestamp to be set")
	})

	t.Run("SelectRecent respects the limit", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			require.NoError(t, auditDbHandler.LogAction("create_person", "Created person"))
		}

		logs, err := auditDbHandler.SelectRecent(2)
		assert.NoError(t, err)
		assert.Len(t, logs, 2, "Expected the limit to cap the result")
	})
}
