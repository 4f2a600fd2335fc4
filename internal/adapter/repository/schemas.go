package repository

import "github.com/eslsoft/traitscore/pkg/filterexpr"

var listResultsSchema = filterexpr.ResourceSchema{
	Filter: map[string]filterexpr.FilterField{
		"user_id": {
			Kind: filterexpr.KindNumber,
			Ops:  map[filterexpr.Op]string{filterexpr.OpEQ: "UserID"},
		},
		"attempt_id": {
			Kind: filterexpr.KindNumber,
			Ops: map[filterexpr.Op]string{
				filterexpr.OpEQ:  "AttemptID",
				filterexpr.OpGTE: "AttemptMin",
				filterexpr.OpLTE: "AttemptMax",
			},
		},
		"result_type": {
			Kind: filterexpr.KindString,
			Ops: map[filterexpr.Op]string{
				filterexpr.OpEQ: "Type",
				filterexpr.OpIN: "Types",
			},
		},
		"dec_approach": {
			Kind: filterexpr.KindNumber,
			Ops: map[filterexpr.Op]string{
				filterexpr.OpGTE: "DecApproachMin",
				filterexpr.OpLTE: "DecApproachMax",
			},
		},
		"created_at": {
			Kind: filterexpr.KindTimestamp,
			Ops: map[filterexpr.Op]string{
				filterexpr.OpGTE: "CreatedAfter",
				filterexpr.OpLTE: "CreatedBefore",
			},
		},
	},
	Order: filterexpr.OrderSchema{
		DefaultPrimary:     "created_at",
		DefaultPrimaryDesc: true,
		FallbackKey:        "id",
		FallbackDesc:       false,
		Fields: map[string]filterexpr.OrderField{
			"created_at":   {Expr: "created_at", Nulls: "last"},
			"attempt_id":   {Expr: "attempt_id"},
			"dec_approach": {Expr: "dec_approach", Nulls: "last"},
			"id":           {Expr: "id"},
		},
	},
}
