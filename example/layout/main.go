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

	// Register a three-generation family
	fmt.Println("Registering family...")
	grandpa := &model.Person{FullName: "Raghav Nair", DOB: birthday(1932, time.January, 12), Gender: model.GenderMale}
	grandma := &model.Person{FullName: "Leela Nair", DOB: birthday(1935, time.July, 1), Gender: model.GenderFemale}
	father := &model.Person{FullName: "Suresh Nair", DOB: birthday(1960, time.April, 22), Gender: model.GenderMale}
	mother := &model.Person{FullName: "Priya Nair", DOB: birthday(1963, time.November, 3), Gender: model.GenderFemale}
	child := &model.Person{FullName: "Aman Nair", DOB: birthday(1990, time.March, 14), Gender: model.GenderMale}

	for _, person := range []*model.Person{grandpa, grandma, father, mother, child} {
		if err := k.CreatePerson(person); err != nil {
			log.Fatalf("Failed to create person %s: %v", person.FullName, err)
		}
		fmt.Printf("Created %s (%s)\n", person.FullName, person.ID)
	}

	// Link the generations
	relationships := []*model.Relationship{
		{PersonAID: grandpa.ID, PersonBID: grandma.ID, RelationType: model.RelationSpouse},
		{PersonAID: grandpa.ID, PersonBID: father.ID, RelationType: model.RelationParent},
		{PersonAID: grandma.ID, PersonBID: father.ID, RelationType: model.RelationParent},
		{PersonAID: father.ID, PersonBID: mother.ID, RelationType: model.RelationSpouse},
		{PersonAID: father.ID, PersonBID: child.ID, RelationType: model.RelationParent},
		{PersonAID: mother.ID, PersonBID: child.ID, RelationType: model.RelationParent},
	}
	for _, rel := range relationships {
		warnings, err := k.CreateRelationship(rel)
		if err != nil {
			log.Fatalf("Failed to create relationship: %v", err)
		}
		for _, warning := range warnings {
			fmt.Printf("Warning: %s\n", warning)
		}
	}

	// Compute the tree layout centered on the father
	fmt.Printf("\nComputing layout centered on %s...\n", father.FullName)
	positions, err := k.ComputeLayout(father.ID)
	if err != nil {
		log.Fatalf("Failed to compute layout: %v", err)
	}

	persons, err := k.Persons.SelectAllPersons()
	if err != nil {
		log.Fatalf("Failed to load persons: %v", err)
	}

	fmt.Printf("\nPositions for %d persons:\n", len(positions))
	for _, person := range persons {
		pos, ok := positions[person.ID]
		if !ok {
			continue
		}
		fmt.Printf("%-12s x=%8.1f y=%8.1f\n", person.FullName, pos.X, pos.Y)
	}

	fmt.Println("\nLayout example completed successfully!")
}
