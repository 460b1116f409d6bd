// File: pkg/sqlgen/sqlgen_test.go

package sqlgen_test

import (
	"strings"
	"testing"

	"github.com/ruslano69/tradelog/pkg/backends/mysql"
	"github.com/ruslano69/tradelog/pkg/backends/sqlite"
	"github.com/ruslano69/tradelog/pkg/sqlgen"
)

func buildPlayersTable(t *testing.T, gen *sqlgen.SQL) *sqlgen.Table {
	t.Helper()
	tb := gen.Table("players")
	tb.Column("id").Type("integer").PrimaryKey().AutoIncrement()
	tb.Column("uuid").Type("BINARY(16)").NotNull()
	tb.Column("name").Type("VARCHAR(16)").NotNull()
	table, err := tb.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return table
}

func TestColumnSQL(t *testing.T) {
	gen := sqlgen.New(sqlite.Dialect{})
	tb := gen.Table("items")
	tb.Column("id").Type("INTEGER").PrimaryKey().AutoIncrement()
	tb.Column("type").Type("TEXT").NotNull()
	tb.Column("amount").Type("INTEGER").NotNull().Default("1")
	tb.Column("data").Type("BLOB")
	tb.Column("note").Type("TEXT").Default("null")
	table, err := tb.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	tests := []struct {
		column string
		want   string
	}{
		{"id", "`id` INTEGER PRIMARY KEY AUTOINCREMENT DEFAULT NULL"},
		{"type", "`type` TEXT NOT NULL DEFAULT NULL"},
		{"amount", "`amount` INTEGER NOT NULL DEFAULT 1"},
		{"data", "`data` BLOB DEFAULT NULL"},
		// "null" в любом регистре нормализуется к отсутствию значения
		{"note", "`note` TEXT DEFAULT NULL"},
	}
	for _, tt := range tests {
		if got := table.Column(tt.column).SQL(); got != tt.want {
			t.Errorf("column %q SQL = %q, want %q", tt.column, got, tt.want)
		}
	}
}

func TestColumnTypeUppercased(t *testing.T) {
	gen := sqlgen.New(sqlite.Dialect{})
	table := buildPlayersTable(t, gen)
	if got := table.Column("id").Type(); got != "INTEGER" {
		t.Errorf("Type = %q, want %q", got, "INTEGER")
	}
}

func TestTableCreateSQL(t *testing.T) {
	t.Run("sqlite", func(t *testing.T) {
		gen := sqlgen.New(sqlite.Dialect{})
		table := buildPlayersTable(t, gen)
		want := "CREATE TABLE IF NOT EXISTS `players`(" +
			"`id` INTEGER PRIMARY KEY AUTOINCREMENT DEFAULT NULL," +
			"`uuid` BINARY(16) NOT NULL DEFAULT NULL," +
			"`name` VARCHAR(16) NOT NULL DEFAULT NULL);"
		if got := table.CreateSQL(); got != want {
			t.Errorf("CreateSQL = %q, want %q", got, want)
		}
	})
	t.Run("mysql", func(t *testing.T) {
		gen := sqlgen.New(mysql.Dialect{})
		table := buildPlayersTable(t, gen)
		got := table.CreateSQL()
		if !strings.Contains(got, "AUTO_INCREMENT") {
			t.Errorf("CreateSQL = %q, want AUTO_INCREMENT keyword", got)
		}
		if !strings.HasSuffix(got, ") ENGINE = InnoDB, DEFAULT CHARSET = utf8mb4, DEFAULT COLLATE = utf8mb4_bin;") {
			t.Errorf("CreateSQL = %q, want table extra suffix", got)
		}
	})
}

func TestTableDropSQL(t *testing.T) {
	gen := sqlgen.New(sqlite.Dialect{})
	table := buildPlayersTable(t, gen)
	if got, want := table.DropSQL(), "DROP TABLE IF EXISTS `players`;"; got != want {
		t.Errorf("DropSQL = %q, want %q", got, want)
	}
}

func TestForeignKeySQL(t *testing.T) {
	gen := sqlgen.New(sqlite.Dialect{})
	tb := gen.Table("shops")
	tb.Column("id").Type("INTEGER").PrimaryKey().AutoIncrement()
	tb.Column("owner_id").Type("INTEGER")
	tb.ForeignKey().Column("owner_id").References("players", "id").CascadeDelete()
	table, err := tb.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	fk := table.ForeignKey("owner_id")
	if fk == nil {
		t.Fatal("ForeignKey(owner_id) = nil")
	}
	want := "FOREIGN KEY(`owner_id`) REFERENCES `players`(`id`) ON DELETE CASCADE"
	if got := fk.SQL(); got != want {
		t.Errorf("SQL = %q, want %q", got, want)
	}
	if !strings.Contains(table.CreateSQL(), ","+want+")") {
		t.Errorf("CreateSQL = %q, want embedded foreign key", table.CreateSQL())
	}
}

func TestTableBuildErrors(t *testing.T) {
	gen := sqlgen.New(sqlite.Dialect{})

	tests := []struct {
		name  string
		build func() *sqlgen.TableBuilder
	}{
		{"empty name", func() *sqlgen.TableBuilder {
			tb := gen.Table("")
			tb.Column("id").Type("INTEGER")
			return tb
		}},
		{"no columns", func() *sqlgen.TableBuilder {
			return gen.Table("empty")
		}},
		{"empty column name", func() *sqlgen.TableBuilder {
			tb := gen.Table("t")
			tb.Column("").Type("INTEGER")
			return tb
		}},
		{"no column type", func() *sqlgen.TableBuilder {
			tb := gen.Table("t")
			tb.Column("id")
			return tb
		}},
		{"duplicate column", func() *sqlgen.TableBuilder {
			tb := gen.Table("t")
			tb.Column("id").Type("INTEGER")
			tb.Column("id").Type("TEXT")
			return tb
		}},
		{"incomplete foreign key", func() *sqlgen.TableBuilder {
			tb := gen.Table("t")
			tb.Column("ref").Type("INTEGER")
			tb.ForeignKey().Column("ref")
			return tb
		}},
		{"foreign key column missing", func() *sqlgen.TableBuilder {
			tb := gen.Table("t")
			tb.Column("id").Type("INTEGER")
			tb.ForeignKey().Column("ref").References("other", "id")
			return tb
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.build().Build(); err == nil {
				t.Error("Build succeeded, want error")
			}
		})
	}
}

func TestIndexCreateSQL(t *testing.T) {
	t.Run("sqlite", func(t *testing.T) {
		gen := sqlgen.New(sqlite.Dialect{})
		idx, err := gen.Index().TableName("trades").ColumnName("timestamp").Build()
		if err != nil {
			t.Fatalf("Build: %v", err)
		}
		// имя по умолчанию — "<таблица>_<первая колонка>"
		if got, want := idx.Name(), "trades_timestamp"; got != want {
			t.Errorf("Name = %q, want %q", got, want)
		}
		want := "CREATE INDEX IF NOT EXISTS `trades_timestamp` ON `trades` (`timestamp`);"
		if got := idx.CreateSQL(); got != want {
			t.Errorf("CreateSQL = %q, want %q", got, want)
		}
		if got, want := idx.DropSQL(), "DROP INDEX IF EXISTS `trades_timestamp`;"; got != want {
			t.Errorf("DropSQL = %q, want %q", got, want)
		}
	})
	t.Run("mysql", func(t *testing.T) {
		gen := sqlgen.New(mysql.Dialect{})
		idx, err := gen.Index().TableName("players").Name("players_uuid").Unique().
			ColumnName("uuid").ColumnName("name").Build()
		if err != nil {
			t.Fatalf("Build: %v", err)
		}
		want := "CREATE UNIQUE INDEX `players_uuid` ON `players` (`uuid`,`name`);"
		if got := idx.CreateSQL(); got != want {
			t.Errorf("CreateSQL = %q, want %q", got, want)
		}
		if got, want := idx.DropSQL(), "DROP INDEX `players_uuid` ON `players`;"; got != want {
			t.Errorf("DropSQL = %q, want %q", got, want)
		}
	})
}

func TestIndexBuildErrors(t *testing.T) {
	gen := sqlgen.New(sqlite.Dialect{})
	if _, err := gen.Index().ColumnName("uuid").Build(); err == nil {
		t.Error("Build without table succeeded, want error")
	}
	if _, err := gen.Index().TableName("players").Build(); err == nil {
		t.Error("Build without columns succeeded, want error")
	}
}

func TestViewCreateSQL(t *testing.T) {
	tests := []struct {
		dialect sqlgen.Dialect
		want    string
	}{
		{sqlite.Dialect{}, "CREATE VIEW IF NOT EXISTS `recent` AS SELECT 1;"},
		{mysql.Dialect{}, "CREATE OR REPLACE VIEW `recent` AS SELECT 1;"},
	}
	for _, tt := range tests {
		gen := sqlgen.New(tt.dialect)
		view, err := gen.View("recent").Select("SELECT 1").Build()
		if err != nil {
			t.Fatalf("%s: Build: %v", tt.dialect.Name(), err)
		}
		if got := view.CreateSQL(); got != tt.want {
			t.Errorf("%s: CreateSQL = %q, want %q", tt.dialect.Name(), got, tt.want)
		}
		if got, want := view.DropSQL(), "DROP VIEW IF EXISTS `recent`;"; got != want {
			t.Errorf("%s: DropSQL = %q, want %q", tt.dialect.Name(), got, want)
		}
	}
}

func TestViewColumn(t *testing.T) {
	gen := sqlgen.New(sqlite.Dialect{})
	view, err := gen.View("recent").Select("SELECT 1").Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	c := view.Column("owner_name")
	if got, want := c.Quoted(), "`owner_name`"; got != want {
		t.Errorf("Quoted = %q, want %q", got, want)
	}
	if got, want := c.Qualified(), "`recent`.`owner_name`"; got != want {
		t.Errorf("Qualified = %q, want %q", got, want)
	}
}

func TestViewBuildErrors(t *testing.T) {
	gen := sqlgen.New(sqlite.Dialect{})
	if _, err := gen.View("").Select("SELECT 1").Build(); err == nil {
		t.Error("Build without name succeeded, want error")
	}
	if _, err := gen.View("empty").Build(); err == nil {
		t.Error("Build without select succeeded, want error")
	}
}

func TestTriggerCreateSQL(t *testing.T) {
	build := func(gen *sqlgen.SQL) *sqlgen.Trigger {
		trg, err := gen.Trigger().
			TableName("players").
			Name("players_touch").
			Event(sqlgen.TriggerUpdate).
			Column("name").
			ForEachRow().
			When("NEW.`name` IS NOT NULL").
			Reaction("UPDATE `players` SET `last_seen` = NEW.`last_seen`").
			Build()
		if err != nil {
			t.Fatalf("Build: %v", err)
		}
		return trg
	}

	t.Run("sqlite", func(t *testing.T) {
		trg := build(sqlgen.New(sqlite.Dialect{}))
		want := "CREATE TRIGGER IF NOT EXISTS `players_touch` AFTER UPDATE OF `name` ON `players`" +
			" FOR EACH ROW WHEN NEW.`name` IS NOT NULL" +
			" BEGIN UPDATE `players` SET `last_seen` = NEW.`last_seen`; END;"
		if got := trg.CreateSQL(); got != want {
			t.Errorf("CreateSQL = %q, want %q", got, want)
		}
	})
	t.Run("mysql", func(t *testing.T) {
		trg := build(sqlgen.New(mysql.Dialect{}))
		got := trg.CreateSQL()
		if strings.Contains(got, "IF NOT EXISTS") {
			t.Errorf("CreateSQL = %q, want no IF NOT EXISTS", got)
		}
		if strings.Contains(got, "BEGIN") {
			t.Errorf("CreateSQL = %q, want unwrapped body", got)
		}
	})
}

func TestTriggerBuildErrors(t *testing.T) {
	gen := sqlgen.New(sqlite.Dialect{})
	if _, err := gen.Trigger().Name("t").Event(sqlgen.TriggerInsert).Reaction("SELECT 1").Build(); err == nil {
		t.Error("Build without table succeeded, want error")
	}
	if _, err := gen.Trigger().TableName("players").Name("t").Event(sqlgen.TriggerInsert).Build(); err == nil {
		t.Error("Build without reaction succeeded, want error")
	}
}

func buildFactTables(t *testing.T, gen *sqlgen.SQL) (facts, refs *sqlgen.Table) {
	t.Helper()
	rb := gen.Table("refs")
	rb.Column("id").Type("INTEGER").PrimaryKey().AutoIncrement()
	rb.Column("label").Type("TEXT").NotNull()
	refs, err := rb.Build()
	if err != nil {
		t.Fatalf("Build refs: %v", err)
	}
	fb := gen.Table("facts")
	fb.Column("id").Type("INTEGER").PrimaryKey().AutoIncrement()
	fb.Column("ref_id").Type("INTEGER").NotNull()
	fb.Column("note").Type("TEXT")
	fb.ForeignKey().Column("ref_id").References("refs", "id")
	facts, err = fb.Build()
	if err != nil {
		t.Fatalf("Build facts: %v", err)
	}
	return facts, refs
}

func TestCombinedViewSelectSQL(t *testing.T) {
	gen := sqlgen.New(sqlite.Dialect{})
	facts, refs := buildFactTables(t, gen)

	cv, err := gen.CombinedView("facts_combined").
		Table(facts).
		Join(sqlgen.ForeignKeyJoin{
			Table:       facts,
			JoinedTable: refs,
			JoinedRole:  "origin",
			ForeignKey:  facts.ForeignKey("ref_id"),
		}).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	want := "SELECT `facts`.`id` AS `id`," +
		"`origin`.`id` AS `origin_id`," +
		"`origin`.`label` AS `origin_label`," +
		"`facts`.`note` AS `note`" +
		" FROM `facts` LEFT JOIN `refs` `origin` ON `origin`.`id`=`facts`.`ref_id`"
	if got := cv.View().SelectSQL(); got != want {
		t.Errorf("SelectSQL = %q, want %q", got, want)
	}
}

func TestCombinedViewColumnRoles(t *testing.T) {
	gen := sqlgen.New(sqlite.Dialect{})
	facts, refs := buildFactTables(t, gen)

	cv, err := gen.CombinedView("facts_combined").
		Table(facts).
		Join(sqlgen.ForeignKeyJoin{
			Table:       facts,
			JoinedTable: refs,
			JoinedRole:  "origin",
			ForeignKey:  facts.ForeignKey("ref_id"),
		}).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if got, want := cv.Column("note").Name(), "note"; got != want {
		t.Errorf("Column(note) = %q, want %q", got, want)
	}
	if got, want := cv.Column("label", "origin").Name(), "origin_label"; got != want {
		t.Errorf("Column(label, origin) = %q, want %q", got, want)
	}
	if got, want := cv.Column("label", "origin").Qualified(), "`facts_combined`.`origin_label`"; got != want {
		t.Errorf("Qualified = %q, want %q", got, want)
	}
}

func TestCombinedViewOmitReferenced(t *testing.T) {
	gen := sqlgen.New(sqlite.Dialect{})
	facts, refs := buildFactTables(t, gen)

	cv, err := gen.CombinedView("facts_combined").
		Table(facts).
		Join(sqlgen.ForeignKeyJoin{
			Table:       facts,
			JoinedTable: refs,
			JoinedRole:  "origin",
			ForeignKey:  facts.ForeignKey("ref_id"),
		}).
		OmitReferencedColumns(true).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	got := cv.View().SelectSQL()
	if strings.Contains(got, "`origin_id`") {
		t.Errorf("SelectSQL = %q, want referenced id omitted", got)
	}
	if !strings.Contains(got, "`origin`.`label` AS `origin_label`") {
		t.Errorf("SelectSQL = %q, want joined label column", got)
	}
}

func TestCombinedViewJoinValidation(t *testing.T) {
	gen := sqlgen.New(sqlite.Dialect{})
	facts, _ := buildFactTables(t, gen)
	other := buildPlayersTable(t, gen)

	_, err := gen.CombinedView("broken").
		Table(facts).
		Join(sqlgen.ForeignKeyJoin{
			Table:       facts,
			JoinedTable: other, // не совпадает с целью внешнего ключа
			ForeignKey:  facts.ForeignKey("ref_id"),
		}).
		Build()
	if err == nil {
		t.Error("Build succeeded, want join target mismatch error")
	}
}

func TestObjectKindString(t *testing.T) {
	tests := []struct {
		kind sqlgen.ObjectKind
		want string
	}{
		{sqlgen.KindTable, "table"},
		{sqlgen.KindIndex, "index"},
		{sqlgen.KindView, "view"},
		{sqlgen.KindTrigger, "trigger"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("String = %q, want %q", got, tt.want)
		}
	}
}
