package migration

import (
	"fmt"
	"strings"

	"github.com/marshallshelly/bazaar/pkg/schema"
)

// PlannerOptions configures migration generation behavior.
type PlannerOptions struct {
	// IfNotExists adds IF NOT EXISTS to CREATE TABLE and CREATE INDEX.
	IfNotExists bool
}

// Planner generates SQL migration statements from table metadata.
type Planner struct {
	options PlannerOptions
}

// NewPlanner creates a new migration planner with default options.
func NewPlanner() *Planner {
	return &Planner{options: PlannerOptions{IfNotExists: true}}
}

// NewPlannerWithOptions creates a new migration planner with custom options.
func NewPlannerWithOptions(opts PlannerOptions) *Planner {
	return &Planner{options: opts}
}

// GenerateMigration generates up and down SQL for creating tables.
// Down drops them in reverse order.
func (p *Planner) GenerateMigration(tables []*schema.TableMetadata) (upSQL, downSQL string) {
	upStatements := make([]string, 0, len(tables))
	downStatements := make([]string, 0, len(tables))

	for _, table := range tables {
		upStatements = append(upStatements, p.generateCreateTable(table))
	}
	for i := len(tables) - 1; i >= 0; i-- {
		downStatements = append(downStatements, p.generateDropTable(tables[i].Name))
	}

	return strings.Join(upStatements, "\n\n") + "\n", strings.Join(downStatements, "\n") + "\n"
}

// generateCreateTable generates a CREATE TABLE statement followed by its indexes.
func (p *Planner) generateCreateTable(table *schema.TableMetadata) string {
	var parts []string

	var singlePKColumn string
	if table.PrimaryKey != nil && len(table.PrimaryKey.Columns) == 1 {
		singlePKColumn = table.PrimaryKey.Columns[0]
	}

	for _, col := range table.Columns {
		colDef := p.generateColumnDefinition(col)
		if col.Name == singlePKColumn {
			colDef += " PRIMARY KEY"
		}
		parts = append(parts, "    "+colDef)
	}

	// Composite only; single-column keys are inline.
	if table.PrimaryKey != nil && len(table.PrimaryKey.Columns) > 1 {
		parts = append(parts, fmt.Sprintf("    CONSTRAINT %s PRIMARY KEY (%s)",
			table.PrimaryKey.Name, strings.Join(table.PrimaryKey.Columns, ", ")))
	}

	createClause := "CREATE TABLE"
	if p.options.IfNotExists {
		createClause = "CREATE TABLE IF NOT EXISTS"
	}
	sql := fmt.Sprintf("%s %s (\n%s\n);", createClause, table.Name, strings.Join(parts, ",\n"))

	var indexStatements []string
	for _, idx := range table.Indexes {
		indexStatements = append(indexStatements, p.generateCreateIndex(table.Name, idx))
	}
	if len(indexStatements) > 0 {
		sql += "\n" + strings.Join(indexStatements, "\n")
	}

	return sql
}

// generateColumnDefinition generates a column definition.
func (p *Planner) generateColumnDefinition(col schema.ColumnMetadata) string {
	parts := []string{col.Name, col.SQLType}

	if !col.Nullable {
		parts = append(parts, "NOT NULL")
	}
	if col.Default != nil {
		parts = append(parts, "DEFAULT", *col.Default)
	}
	if col.Unique {
		parts = append(parts, "UNIQUE")
	}

	return strings.Join(parts, " ")
}

// generateCreateIndex generates a CREATE INDEX statement, with USING when
// the index has a non-default access method such as gin.
func (p *Planner) generateCreateIndex(tableName string, idx schema.IndexMetadata) string {
	parts := []string{"CREATE INDEX"}
	if idx.Unique {
		parts[0] = "CREATE UNIQUE INDEX"
	}
	if p.options.IfNotExists {
		parts = append(parts, "IF NOT EXISTS")
	}
	parts = append(parts, idx.Name, "ON", tableName)
	if idx.Type != "" && !strings.EqualFold(idx.Type, "btree") {
		parts = append(parts, "USING", idx.Type)
	}
	parts = append(parts, "("+strings.Join(idx.Columns, ", ")+");")

	return strings.Join(parts, " ")
}

// generateDropTable generates a DROP TABLE statement.
func (p *Planner) generateDropTable(tableName string) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE;", tableName)
}
