// File: pkg/connector/connector_test.go

package connector_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/ruslano69/tradelog/pkg/backends"
	_ "github.com/ruslano69/tradelog/pkg/backends/sqlite"
	"github.com/ruslano69/tradelog/pkg/connector"
)

func newTestConnector(t *testing.T) *connector.Connector {
	t.Helper()
	backend, err := backends.New(backends.Config{Type: "sqlite", Path: ":memory:"})
	if err != nil {
		t.Fatalf("backends.New: %v", err)
	}
	c := connector.New(backend, nil)
	t.Cleanup(func() {
		if !c.IsShutdown() {
			_ = c.Shutdown(context.Background())
		}
	})
	return c
}

func createCounterTable(t *testing.T, c *connector.Connector) {
	t.Helper()
	ctx := context.Background()
	err := c.Execute(ctx, "create table", func(ctx context.Context) error {
		_, err := c.Exec(ctx, "CREATE TABLE IF NOT EXISTS `counters`(`id` INTEGER PRIMARY KEY AUTOINCREMENT, `name` TEXT NOT NULL, `value` INTEGER NOT NULL DEFAULT 0);")
		return err
	})
	if err != nil {
		t.Fatalf("create table: %v", err)
	}
}

func TestExecuteRoundTrip(t *testing.T) {
	c := newTestConnector(t)
	createCounterTable(t, c)
	ctx := context.Background()

	err := c.Execute(ctx, "insert counter", func(ctx context.Context) error {
		_, err := c.Exec(ctx, "INSERT INTO `counters`(`name`, `value`) VALUES (?, ?);", "hits", 42)
		return err
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	var value int64
	err = c.Execute(ctx, "read counter", func(ctx context.Context) error {
		row, err := c.QueryRow(ctx, "SELECT `value` FROM `counters` WHERE `name` = ?;", "hits")
		if err != nil {
			return err
		}
		return row.Scan(&value)
	})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if value != 42 {
		t.Errorf("value = %d, want 42", value)
	}
}

func TestPrepareCachesStatements(t *testing.T) {
	c := newTestConnector(t)
	createCounterTable(t, c)
	ctx := context.Background()

	const query = "SELECT COUNT(*) FROM `counters`;"
	var first, second *sql.Stmt
	err := c.Execute(ctx, "prepare twice", func(ctx context.Context) error {
		var err error
		if first, err = c.Prepare(ctx, query); err != nil {
			return err
		}
		second, err = c.Prepare(ctx, query)
		return err
	})
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if first != second {
		t.Error("expected the same cached statement for identical SQL text")
	}
}

func TestGetOrInsertID(t *testing.T) {
	c := newTestConnector(t)
	ctx := context.Background()

	err := c.Execute(ctx, "create table", func(ctx context.Context) error {
		_, err := c.Exec(ctx, "CREATE TABLE IF NOT EXISTS `tags`(`id` INTEGER PRIMARY KEY AUTOINCREMENT, `label` TEXT NOT NULL UNIQUE);")
		return err
	})
	if err != nil {
		t.Fatalf("create table: %v", err)
	}

	lookup := "SELECT `id` FROM `tags` WHERE `label` = ?;"
	insert := "INSERT OR IGNORE INTO `tags`(`label`) VALUES (?);"

	ids := make([]int64, 0, 3)
	for i := 0; i < 3; i++ {
		id, err := connector.ExecuteResult(ctx, c, "get or insert tag", func(ctx context.Context) (int64, error) {
			return c.GetOrInsertID(ctx, "tag", lookup, []any{"alpha"}, insert, []any{"alpha"})
		})
		if err != nil {
			t.Fatalf("attempt %d: %v", i, err)
		}
		ids = append(ids, id)
	}
	if ids[0] == 0 {
		t.Fatal("expected non-zero id")
	}
	if ids[1] != ids[0] || ids[2] != ids[0] {
		t.Errorf("ids = %v, want all equal", ids)
	}
}

func TestTransactionRollback(t *testing.T) {
	c := newTestConnector(t)
	createCounterTable(t, c)
	ctx := context.Background()

	boom := errors.New("boom")
	err := c.Execute(ctx, "failing transaction", func(ctx context.Context) error {
		return c.Transaction(ctx, func(ctx context.Context) error {
			if _, err := c.Exec(ctx, "INSERT INTO `counters`(`name`, `value`) VALUES (?, ?);", "doomed", 1); err != nil {
				return err
			}
			return boom
		})
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped boom", err)
	}

	var count int64
	err = c.Execute(ctx, "count", func(ctx context.Context) error {
		row, err := c.QueryRow(ctx, "SELECT COUNT(*) FROM `counters`;")
		if err != nil {
			return err
		}
		return row.Scan(&count)
	})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0 after rollback", count)
	}
}

func TestNestedTransactionRejected(t *testing.T) {
	c := newTestConnector(t)
	ctx := context.Background()

	err := c.Execute(ctx, "nested", func(ctx context.Context) error {
		return c.Transaction(ctx, func(ctx context.Context) error {
			inner := c.Transaction(ctx, func(ctx context.Context) error { return nil })
			if inner == nil {
				t.Error("expected nested transaction to be rejected")
			}
			return nil
		})
	})
	if err != nil {
		t.Fatalf("outer transaction: %v", err)
	}
}

func TestCreateAndDropIndex(t *testing.T) {
	c := newTestConnector(t)
	createCounterTable(t, c)
	ctx := context.Background()

	idx, err := c.SQL().Index().
		TableName("counters").
		Name("counters_name").
		ColumnName("name").
		Build()
	if err != nil {
		t.Fatalf("build index: %v", err)
	}
	if err := c.CreateObject(ctx, idx); err != nil {
		t.Fatalf("create index: %v", err)
	}
	// повторное создание должно быть no-op
	if err := c.CreateObject(ctx, idx); err != nil {
		t.Fatalf("create index again: %v", err)
	}
	if err := c.DropObject(ctx, idx); err != nil {
		t.Fatalf("drop index: %v", err)
	}
	if err := c.DropObject(ctx, idx); err != nil {
		t.Fatalf("drop index again: %v", err)
	}
}

func TestShutdownFence(t *testing.T) {
	c := newTestConnector(t)
	createCounterTable(t, c)
	ctx := context.Background()

	if err := c.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if !c.IsShutdown() {
		t.Error("IsShutdown = false after Shutdown")
	}

	err := c.Execute(ctx, "after shutdown", func(ctx context.Context) error { return nil })
	if !errors.Is(err, connector.ErrShutdown) {
		t.Errorf("Execute after shutdown: err = %v, want ErrShutdown", err)
	}

	if err := c.Shutdown(ctx); err == nil {
		t.Error("second Shutdown succeeded, want error")
	}
}

func TestEnsureConnectionUnknownType(t *testing.T) {
	if _, err := backends.New(backends.Config{Type: "oracle"}); err == nil {
		t.Error("expected error for unregistered backend type")
	}
}
