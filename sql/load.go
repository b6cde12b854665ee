package sql

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log"
)

//go:embed init.sql
var initSQL string

//go:embed persons.sql
var personsSQL string

//go:embed relationships.sql
var relationshipsSQL string

//go:embed audit.sql
var auditSQL string

// Function lists for verification
var PersonsFunctions = []string{
	"init_persons",
	"insert_person",
	"select_person",
	"select_all_persons",
	"search_persons",
	"update_person",
	"delete_person",
}

var RelationshipsFunctions = []string{
	"init_relationships",
	"insert_relationship",
	"insert_spouse_pair",
	"select_relationship",
	"select_all_relationships",
	"select_relationships_from_person",
	"select_relationships_to_person",
	"select_relationships_by_person",
	"relationship_exists",
	"update_relationship_endpoints",
	"delete_relationship",
	"delete_relationships_by_person",
}

var AuditFunctions = []string{
	"init_audit_logs",
	"insert_audit_log",
	"select_recent_audit_logs",
}

// Init intializes db extensions
func Init(db *sql.DB) error {
	_, err := db.Exec(initSQL)
	if err != nil {
		return fmt.Errorf("error executing schema SQL: %w", err)
	}

	log.Println("Database extensions initialized successfully")
	return nil
}

// LoadPersonsSql loads person-related SQL functions
func LoadPersonsSql(db *sql.DB, force bool) error {
	if !force {
		exist, err := checkFunctions(db, PersonsFunctions)
		if err != nil {
			return fmt.Errorf("error checking existing persons functions: %w", err)
		}
		if exist {
			return nil
		}
	}

	_, err := db.Exec(personsSQL)
	if err != nil {
		return fmt.Errorf("error executing persons SQL: %w", err)
	}

	exist, err := checkFunctions(db, PersonsFunctions)
	if err != nil {
		return fmt.Errorf("error checking existing functions: %w", err)
	}
	if !exist {
		return fmt.Errorf("not all required SQL functions were created")
	}

	log.Println("SQL persons functions loaded successfully")
	return nil
}

// LoadRelationshipsSql loads relationship-related SQL functions
func LoadRelationshipsSql(db *sql.DB, force bool) error {
	if !force {
		exist, err := checkFunctions(db, RelationshipsFunctions)
		if err != nil {
			return fmt.Errorf("error checking existing relationships functions: %w", err)
		}
		if exist {
			return nil
		}
	}

	_, err := db.Exec(relationshipsSQL)
	if err != nil {
		return fmt.Errorf("error executing relationships SQL: %w", err)
	}

	exist, err := checkFunctions(db, RelationshipsFunctions)
	if err != nil {
		return fmt.Errorf("error checking existing functions: %w", err)
	}
	if !exist {
		return fmt.Errorf("not all required SQL functions were created")
	}

	log.Println("SQL relationships functions loaded successfully")
	return nil
}

// LoadAuditSql loads audit-log SQL functions
func LoadAuditSql(db *sql.DB, force bool) error {
	if !force {
		exist, err := checkFunctions(db, AuditFunctions)
		if err != nil {
			return fmt.Errorf("error checking existing audit functions: %w", err)
		}
		if exist {
			return nil
		}
	}

	_, err := db.Exec(auditSQL)
	if err != nil {
		return fmt.Errorf("error executing audit SQL: %w", err)
	}

	exist, err := checkFunctions(db, AuditFunctions)
	if err != nil {
		return fmt.Errorf("error checking existing functions: %w", err)
	}
	if !exist {
		return fmt.Errorf("not all required SQL functions were created")
	}

	log.Println("SQL audit functions loaded successfully")
	return nil
}

// LoadAllSql loads all SQL functions
func LoadAllSql(db *sql.DB, force bool) error {
	if err := LoadPersonsSql(db, force); err != nil {
		return err
	}

	if err := LoadRelationshipsSql(db, force); err != nil {
		return err
	}

	if err := LoadAuditSql(db, force); err != nil {
		return err
	}

	return nil
}

// checkFunctions verifies that all required functions exist in the database
func checkFunctions(db *sql.DB, sqlFunctions []string) (bool, error) {
	var allExist bool
	for _, f := range sqlFunctions {
		err := db.QueryRow(
			`SELECT EXISTS(SELECT 1 FROM pg_proc WHERE proname = $1);`,
			f,
		).Scan(&allExist)
		if err != nil {
			return false, fmt.Errorf("error checking existence of function %s: %w", f, err)
		}
		if !allExist {
			log.Printf("Function %s does not exist", f)
			break
		}
	}
	return allExist, nil
}
