package database

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

var jsonbType = map[string]string{dialect.Postgres: "jsonb"}

var (
	// AlgorithmsColumns holds the columns for the "scoring_algorithms" table.
	AlgorithmsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "version", Type: field.TypeInt, Unique: true},
		{Name: "is_global", Type: field.TypeBool, Default: false},
		{Name: "self_table", Type: field.TypeJSON, SchemaType: jsonbType},
		{Name: "conc_table", Type: field.TypeJSON, SchemaType: jsonbType},
		{Name: "adjust_table", Type: field.TypeJSON, SchemaType: jsonbType},
		{Name: "created_at", Type: field.TypeTime},
	}
	// AlgorithmsTable holds the schema information for the "scoring_algorithms" table.
	AlgorithmsTable = &schema.Table{
		Name:       "scoring_algorithms",
		Columns:    AlgorithmsColumns,
		PrimaryKey: []*schema.Column{AlgorithmsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "scoringalgorithm_is_global_version",
				Unique:  false,
				Columns: []*schema.Column{AlgorithmsColumns[2], AlgorithmsColumns[1]},
			},
		},
	}

	// ResponsesColumns holds the columns for the "assessment_responses" table.
	ResponsesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "user_id", Type: field.TypeInt64},
		{Name: "attempt_id", Type: field.TypeInt64},
		{Name: "assessment_id", Type: field.TypeInt64},
		{Name: "selected_options", Type: field.TypeString, Size: 2147483647},
		{Name: "created_at", Type: field.TypeTime},
	}
	// ResponsesTable holds the schema information for the "assessment_responses" table.
	ResponsesTable = &schema.Table{
		Name:       "assessment_responses",
		Columns:    ResponsesColumns,
		PrimaryKey: []*schema.Column{ResponsesColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "assessmentresponse_user_id_attempt_id",
				Unique:  false,
				Columns: []*schema.Column{ResponsesColumns[1], ResponsesColumns[2]},
			},
		},
	}

	// ResultsColumns holds the columns for the "assessment_results" table.
	ResultsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "user_id", Type: field.TypeInt64},
		{Name: "attempt_id", Type: field.TypeInt64},
		{Name: "type", Type: field.TypeString, Size: 16},
		{Name: "self_a", Type: field.TypeFloat64, Default: 0},
		{Name: "self_b", Type: field.TypeFloat64, Default: 0},
		{Name: "self_c", Type: field.TypeFloat64, Default: 0},
		{Name: "self_d", Type: field.TypeFloat64, Default: 0},
		{Name: "self_avg", Type: field.TypeFloat64, Default: 0},
		{Name: "conc_a", Type: field.TypeFloat64, Default: 0},
		{Name: "conc_b", Type: field.TypeFloat64, Default: 0},
		{Name: "conc_c", Type: field.TypeFloat64, Default: 0},
		{Name: "conc_d", Type: field.TypeFloat64, Default: 0},
		{Name: "conc_avg", Type: field.TypeFloat64, Default: 0},
		{Name: "adj_a", Type: field.TypeFloat64, Default: 0},
		{Name: "adj_b", Type: field.TypeFloat64, Default: 0},
		{Name: "adj_c", Type: field.TypeFloat64, Default: 0},
		{Name: "adj_d", Type: field.TypeFloat64, Default: 0},
		{Name: "adj_avg", Type: field.TypeFloat64, Default: 0},
		{Name: "dec_approach", Type: field.TypeFloat64, Default: 0},
		{Name: "algorithm_version", Type: field.TypeInt, Default: 0},
		{Name: "self_word_count", Type: field.TypeInt, Default: 0},
		{Name: "conc_word_count", Type: field.TypeInt, Default: 0},
		{Name: "adj_word_count", Type: field.TypeInt, Default: 0},
		{Name: "self_words", Type: field.TypeJSON, SchemaType: jsonbType},
		{Name: "conc_words", Type: field.TypeJSON, SchemaType: jsonbType},
		{Name: "adj_words", Type: field.TypeJSON, SchemaType: jsonbType},
		{Name: "created_at", Type: field.TypeTime},
	}
	// ResultsTable holds the schema information for the "assessment_results" table.
	ResultsTable = &schema.Table{
		Name:       "assessment_results",
		Columns:    ResultsColumns,
		PrimaryKey: []*schema.Column{ResultsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "assessmentresult_user_id_attempt_id_type",
				Unique:  true,
				Columns: []*schema.Column{ResultsColumns[1], ResultsColumns[2], ResultsColumns[3]},
			},
			{
				Name:    "assessmentresult_created_at",
				Unique:  false,
				Columns: []*schema.Column{ResultsColumns[27]},
			},
		},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		AlgorithmsTable,
		ResponsesTable,
		ResultsTable,
	}
)

// Migrate creates or updates every table the service owns.
func Migrate(ctx context.Context, drv dialect.Driver) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return fmt.Errorf("prepare migration: %w", err)
	}
	if err := m.Create(ctx, Tables...); err != nil {
		return fmt.Errorf("run migration: %w", err)
	}
	return nil
}
