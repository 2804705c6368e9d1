package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"
	"todoKeeper/internal/storage/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// PostgresStoreSuite - интеграционные тесты key-value хранилища на PostgreSQL
type PostgresStoreSuite struct {
	suite.Suite
	container  testcontainers.Container
	store      *postgres.Store
	connString string
	ctx        context.Context
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.ctx = context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(30 * time.Second),
	}

	container, err := testcontainers.GenericContainer(s.ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(s.T(), err)
	s.container = container

	host, err := container.Host(s.ctx)
	require.NoError(s.T(), err)

	port, err := container.MappedPort(s.ctx, "5432")
	require.NoError(s.T(), err)

	s.connString = fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	s.store, err = postgres.New(s.ctx, s.connString, postgres.PoolConfig{MaxConns: 4})
	require.NoError(s.T(), err)
}

func (s *PostgresStoreSuite) TearDownSuite() {
	if s.store != nil {
		s.store.Close()
	}
	if s.container != nil {
		s.container.Terminate(s.ctx)
	}
}

func (s *PostgresStoreSuite) SetupTest() {
	conn, err := pgx.Connect(s.ctx, s.connString)
	if err != nil {
		s.T().Logf("Не удалось подключиться для очистки: %v", err)
		return
	}
	defer conn.Close(s.ctx)

	if _, err := conn.Exec(s.ctx, "DELETE FROM kv_items"); err != nil {
		s.T().Logf("Не удалось очистить таблицу: %v", err)
	}
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Пропускаем интеграционные тесты в коротком режиме")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) TestStore_MissingKey() {
	_, ok, err := s.store.GetItem(s.ctx, "todoApp.tasks")
	s.Require().NoError(err)
	s.False(ok)
}

func (s *PostgresStoreSuite) TestStore_SetAndOverwrite() {
	s.Require().NoError(s.store.SetItem(s.ctx, "todoApp.tasks", "[]"))
	s.Require().NoError(s.store.SetItem(s.ctx, "todoApp.tasks", `[{"id":"t1"}]`))

	value, ok, err := s.store.GetItem(s.ctx, "todoApp.tasks")
	s.Require().NoError(err)
	s.True(ok)
	s.Equal(`[{"id":"t1"}]`, value)
}

func (s *PostgresStoreSuite) TestStore_KeysAreIndependent() {
	s.Require().NoError(s.store.SetItem(s.ctx, "todoApp.tasks", "tasks"))
	s.Require().NoError(s.store.SetItem(s.ctx, "todoApp.folders", "folders"))

	tasks, _, err := s.store.GetItem(s.ctx, "todoApp.tasks")
	s.Require().NoError(err)
	folders, _, err := s.store.GetItem(s.ctx, "todoApp.folders")
	s.Require().NoError(err)

	s.Equal("tasks", tasks)
	s.Equal("folders", folders)
}

func (s *PostgresStoreSuite) TestMigrate_Idempotent() {
	s.NoError(postgres.Migrate(s.connString))
}

func (s *PostgresStoreSuite) TestHealthCheck() {
	s.NoError(s.store.HealthCheck(s.ctx))
}
