package query

import "strings"

// AST for the criteria expression language, e.g.
//
//	ram in (16GB, 32GB) and storage = 1TB-4TB and location = "AmsterdamAMS-01"

type ASTCriteria struct {
	Clauses []*ASTClause `parser:"@@ ( 'AND'? @@ )*"`
}

type ASTClause struct {
	Field string    `parser:"@Word"`
	In    []string  `parser:"( 'IN' '(' @(Word | String) ( ',' @(Word | String) )* ')'"`
	Value *ASTValue `parser:"| '=' @@ )"`
}

type ASTValue struct {
	// Unquoted values are split on '-' by the lexer, so ranges and
	// names like AmsterdamAMS-01 are captured in parts and rejoined.
	Parts []string `parser:"@(String | Word) ( '-' @Word )*"`
}

func (v *ASTValue) String() string {
	return strings.Join(v.Parts, "-")
}
