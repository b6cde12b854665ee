package sql

import (
	"testing"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	db := initDB(t)

	t.Run("Initialize database extensions", func(t *testing.T) {
		err := Init(db.Instance)
		assert.NoError(t, err)

		// Verify pgcrypto extension is created
		var exists bool
		err = db.Instance.QueryRow("SELECT EXISTS(SELECT 1 FROM pg_extension WHERE extname = 'pgcrypto');").Scan(&exists)
		require.NoError(t, err)
		assert.True(t, exists, "pgcrypto extension should be created")
	})

	t.Run("Initialize database extensions is idempotent", func(t *testing.T) {
		// Running Init multiple times should not error
		err := Init(db.Instance)
		assert.NoError(t, err)

		err = Init(db.Instance)
		assert.NoError(t, err)
	})
}

func TestLoadPersonsSql(t *testing.T) {
	db := initDB(t)
	defer db.Close()

	// Initialize extensions first
	err := Init(db.Instance)
	require.NoError(t, err)

	t.Run("Load persons SQL functions", func(t *testing.T) {
		err := LoadPersonsSql(db.Instance, false)
		assert.NoError(t, err)

		// Verify all functions exist
		for _, funcName := range PersonsFunctions {
			var exists bool
			err = db.Instance.QueryRow("SELECT EXISTS(SELECT 1 FROM pg_proc WHERE proname = $1);", funcName).Scan(&exists)
			require.NoError(t, err)
			assert.True(t, exists, "Function %s should exist", funcName)
		}
	})

	t.Run("Load persons SQL is idempotent without force", func(t *testing.T) {
		// Loading again without force should be a no-op
		err := LoadPersonsSql(db.Instance, false)
		assert.NoError(t, err)
	})

	t.Run("Load persons SQL with force reloads", func(t *testing.T) {
		// Loading with force should reload
		err := LoadPersonsSql(db.Instance, true)
		assert.NoError(t, err)

		// Verify functions still exist
		for _, funcName := range PersonsFunctions {
			var exists bool
			err = db.Instance.QueryRow("SELECT EXISTS(SELECT 1 FROM pg_proc WHERE proname = $1);", funcName).Scan(&exists)
			require.NoError(t, err)
			assert.True(t, exists, "Function %s should exist after force reload", funcName)
		}
	})
}

func TestLoadRelationshipsSql(t *testing.T) {
	db := initDB(t)
	defer db.Close()

	// Initialize extensions first
	err := Init(db.Instance)
	require.NoError(t, err)

	t.Run("Load relationships SQL functions", func(t *testing.T) {
		err := LoadRelationshipsSql(db.Instance, false)
		assert.NoError(t, err)

		// Verify all functions exist
		for _, funcName := range RelationshipsFunctions {
			var exists bool
			err = db.Instance.QueryRow("SELECT EXISTS(SELECT 1 FROM pg_proc WHERE proname = $1);", funcName).Scan(&exists)
			require.NoError(t, err)
			assert.True(t, exists, "Function %s should exist", funcName)
		}
	})

	t.Run("Load relationships SQL is idempotent without force", func(t *testing.T) {
		err := LoadRelationshipsSql(db.Instance, false)
		assert.NoError(t, err)
	})

	t.Run("Load relationships SQL with force reloads", func(t *testing.T) {
		err := LoadRelationshipsSql(db.Instance, true)
		assert.NoError(t, err)
	})
}

func TestLoadAuditSql(t *testing.T) {
	db := initDB(t)
	defer db.Close()

	// Initialize extensions first
	err := Init(db.Instance)
	require.NoError(t, err)

	t.Run("Load audit SQL functions", func(t *testing.T) {
		err := LoadAuditSql(db.Instance, false)
		assert.NoError(t, err)

		// Verify all functions exist
		for _, funcName := range AuditFunctions {
			var exists bool
			err = db.Instance.QueryRow("SELECT EXISTS(SELECT 1 FROM pg_proc WHERE proname = $1);", funcName).Scan(&exists)
			require.NoError(t, err)
			assert.True(t, exists, "Function %s should exist", funcName)
		}
	})

	t.Run("Load audit SQL is idempotent without force", func(t *testing.T) {
		err := LoadAuditSql(db.Instance, false)
		assert.NoError(t, err)
	})

	t.Run("Load audit SQL with force reloads", func(t *testing.T) {
		err := LoadAuditSql(db.Instance, true)
		assert.NoError(t, err)
	})
}

func TestLoadAllSql(t *testing.T) {
	db := initDB(t)
	defer db.Close()

	// Initialize extensions first
	err := Init(db.Instance)
	require.NoError(t, err)

	t.Run("Load all SQL functions", func(t *testing.T) {
		err := LoadAllSql(db.Instance, false)
		assert.NoError(t, err)

		// Verify all persons functions exist
		for _, funcName := range PersonsFunctions {
			var exists bool
			err = db.Instance.QueryRow("SELECT EXISTS(SELECT 1 FROM pg_proc WHERE proname = $1);", funcName).Scan(&exists)
			require.NoError(t, err)
			assert.True(t, exists, "Persons function %s should exist", funcName)
		}

		// Verify all relationships functions exist
		for _, funcName := range RelationshipsFunctions {
			var exists bool
			err = db.Instance.QueryRow("SELECT EXISTS(SELECT 1 FROM pg_proc WHERE proname = $1);", funcName).Scan(&exists)
			require.NoError(t, err)
			assert.True(t, exists, "Relationships function %s should exist", funcName)
		}

		// Verify all audit functions exist
		for _, funcName := range AuditFunctions {
			var exists bool
			err = db.Instance.QueryRow("SELECT EXISTS(SELECT 1 FROM pg_proc WHERE proname = $1);", funcName).Scan(&exists)
			require.NoError(t, err)
			assert.True(t, exists, "Audit function %s should exist", funcName)
		}
	})

	t.Run("Load all SQL is idempotent without force", func(t *testing.T) {
		err := LoadAllSql(db.Instance, false)
		assert.NoError(t, err)
	})

	t.Run("Load all SQL with force reloads", func(t *testing.T) {
		err := LoadAllSql(db.Instance, true)
		assert.NoError(t, err)
	})
}

func TestCheckFunctions(t *testing.T) {
	db := initDB(t)
	defer db.Close()

	// Initialize extensions first
	err := Init(db.Instance)
	require.NoError(t, err)

	t.Run("Check functions returns false when functions don't exist", func(t *testing.T) {
		exists, err := checkFunctions(db.Instance, []string{"nonexistent_function"})
		assert.NoError(t, err)
		assert.False(t, exists, "Should return false for nonexistent function")
	})

	t.Run("Check functions returns true when all functions exist", func(t *testing.T) {
		// Load persons SQL first
		err := LoadPersonsSql(db.Instance, false)
		require.NoError(t, err)

		exists, err := checkFunctions(db.Instance, PersonsFunctions)
		assert.NoError(t, err)
		assert.True(t, exists, "Should return true when all functions exist")
	})

	t.Run("Check functions returns false when some functions don't exist", func(t *testing.T) {
		// Mix of existing and non-existing functions
		mixedFunctions := append([]string{"init_persons"}, "nonexistent_function")
		exists, err := checkFunctions(db.Instance, mixedFunctions)
		assert.NoError(t, err)
		assert.False(t, exists, "Should return false when some functions don't exist")
	})

	t.Run("Check functions with empty list", func(t *testing.T) {
		exists, err := checkFunctions(db.Instance, []string{})
		assert.NoError(t, err)
		// With an empty list, the loop doesn't execute and allExist remains false
		// This is actually the correct behavior from the implementation
		assert.False(t, exists, "Should return false for empty function list")
	})
}

func TestFunctionLists(t *testing.T) {
	t.Run("PersonsFunctions list is not empty", func(t *testing.T) {
		assert.NotEmpty(t, PersonsFunctions, "PersonsFunctions should not be empty")
		assert.Greater(t, len(PersonsFunctions), 5, "Should have multiple person functions")
	})

	t.Run("RelationshipsFunctions list is not empty", func(t *testing.T) {
		assert.NotEmpty(t, RelationshipsFunctions, "RelationshipsFunctions should not be empty")
		assert.Greater(t, len(RelationshipsFunctions), 5, "Should have multiple relationship functions")
	})

	t.Run("AuditFunctions list is not empty", func(t *testing.T) {
		assert.NotEmpty(t, AuditFunctions, "AuditFunctions should not be empty")
		assert.Greater(t, len(AuditFunctions), 2, "Should have multiple audit functions")
	})
}

func TestEmbeddedSQL(t *testing.T) {
	t.Run("Init SQL is embedded", func(t *testing.T) {
		assert.NotEmpty(t, initSQL, "initSQL should be embedded")
		assert.Contains(t, initSQL, "CREATE EXTENSION", "Should contain CREATE EXTENSION")
	})

	t.Run("Persons SQL is embedded", func(t *testing.T) {
		assert.NotEmpty(t, personsSQL, "personsSQL should be embedded")
		assert.Contains(t, personsSQL, "CREATE", "Should contain CREATE statements")
	})

	t.Run("Relationships SQL is embedded", func(t *testing.T) {
		assert.NotEmpty(t, relationshipsSQL, "relationshipsSQL should be embedded")
		assert.Contains(t, relationshipsSQL, "CREATE", "Should contain CREATE statements")
	})

	t.Run("Audit SQL is embedded", func(t *testing.T) {
		assert.NotEmpty(t, auditSQL, "auditSQL should be embedded")
		assert.Contains(t, auditSQL, "CREATE", "Should contain CREATE statements")
	})
}
