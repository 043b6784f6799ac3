package retrieval

import (
	"context"
	"log"
	"testing"

	"github.com/siherrmann/pdfrag/database"
	"github.com/siherrmann/pdfrag/helper"
	loadSql "github.com/siherrmann/pdfrag/sql"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
)

var dbPort string

func TestMain(m *testing.M) {
	var teardown func(ctx context.Context, opts ...testcontainers.TerminateOption) error
	var err error
	teardown, dbPort, err = helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("error starting postgres container: %v", err)
	}

	m.Run()

	if teardown != nil && teardown(context.Background()) != nil {
		log.Fatalf("error tearing down postgres container: %v", err)
	}
}

func initDB(t *testing.T) *helper.Database {
	helper.SetTestDatabaseConfigEnvs(t, dbPort)
	dbConfig, err := helper.NewDatabaseConfiguration()
	require.NoError(t, err, "failed to create database configuration")
	db := helper.NewTestDatabase(dbConfig)

	err = loadSql.Init(db.Instance)
	require.NoError(t, err)

	return db
}

// initRecords returns a handler on an empty records table of dimension 3
func initRecords(t *testing.T) *database.RecordsDBHandler {
	db := initDB(t)

	records, err := database.NewRecordsDBHandler(db, 3, true)
	require.NoError(t, err)

	err = records.ClearRecords(context.Background())
	require.NoError(t, err)

	return records
}
