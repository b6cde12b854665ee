package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/censustools/kintree"
	"github.com/censustools/kintree/helper"
	"github.com/censustools/kintree/model"
)

func birthday(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &d
}

func main() {
	// Start a test PostgreSQL container
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(context.Background())

	// Create database configuration using the container port
	dbConfig := &helper.DatabaseConfiguration{
		Host:     "localhost",
		Port:     dbPort,
		Database: "database",
		Username: "user",
		Password: "password",
		Schema:   "public",
		SSLMode:  "disable",
	}

	k, err := kintree.NewKintree(dbConfig)
	if err != nil {
		log.Fatalf("Failed to create kintree: %v", err)
	}
	defer k.Close()

	// Register census records, two of them the same person entered twice
	fmt.Println("Registering census records...")
	original := &model.Person{
		FullName:    "Aman Sharma",
		DOB:         birthday(1988, time.March, 14),
		Gender:      model.GenderMale,
		Address:     "12 Lakeview Road, Pune",
		ExternalIDs: model.ExternalIDs{"national_id": "IN-552211"},
	}
	doubleEntry := &model.Person{
		FullName: "Aman Sharma",
		DOB:      birthday(1988, time.March, 14),
		Address:  "12 Lakeview Rd, Pune",
		Notes:    "Registered at the mobile census desk",
	}
	unrelated := &model.Person{
		FullName: "Leela Nair",
		DOB:      birthday(1954, time.July, 1),
		Gender:   model.GenderFemale,
	}
	child := &model.Person{
		FullName: "Ravi Sharma",
		DOB:      birthday(2015, time.May, 5),
	}

	for _, person := range []*model.Person{original, doubleEntry, unrelated, child} {
		if err := k.CreatePerson(person); err != nil {
			log.Fatalf("Failed to create person %s: %v", person.FullName, err)
		}
	}

	// The child was linked to the double entry by mistake
	if _, err := k.CreateRelationship(&model.Relationship{
		PersonAID:    doubleEntry.ID,
		PersonBID:    child.ID,
		RelationType: model.RelationParent,
	}); err != nil {
		log.Fatalf("Failed to create relationship: %v", err)
	}

	// Scan for duplicates
	fmt.Println("\nScanning for duplicates...")
	groups, err := k.FindDuplicateGroups()
	if err != nil {
		log.Fatalf("Failed to find duplicate groups: %v", err)
	}

	fmt.Printf("Found %d duplicate group(s):\n", len(groups))
	for i, group := range groups {
		fmt.Printf("\n--- Group %d ---\n", i+1)
		for _, person := range group {
			score := k.Similarity(group[0], person)
			fmt.Printf("%s (%s) score=%.2f\n", person.FullName, person.ID, score)
		}
	}

	// Merge the double entry into the original record
	fmt.Printf("\nMerging %s into %s...\n", doubleEntry.ID, original.ID)
	merged, err := k.MergePersons(original, []*model.Person{doubleEntry})
	if err != nil {
		log.Fatalf("Failed to merge persons: %v", err)
	}
	fmt.Printf("Merged record: %s\n", merged.FullName)
	fmt.Printf("Notes: %s\n", merged.Notes)

	// The child now hangs off the surviving record
	exists, err := k.Relationships.RelationshipExists(merged.ID, child.ID, model.RelationParent)
	if err != nil {
		log.Fatalf("Failed to check relationship: %v", err)
	}
	fmt.Printf("Parent edge moved to surviving record: %v\n", exists)

	fmt.Println("\nDedupe example completed successfully!")
}
