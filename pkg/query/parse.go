package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	criteriaLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Keyword", Pattern: `(?i)\b(AND|IN)\b`},
		{Name: "String", Pattern: `'[^']*'|"[^"]*"`},
		{Name: "Word", Pattern: `[^\s=(),'"\-]+`},
		{Name: "Punct", Pattern: `[-=(),]`},
		{Name: "Whitespace", Pattern: `\s+`},
	})

	criteriaParser = participle.MustBuild[ASTCriteria](
		participle.Lexer(criteriaLexer),
		participle.Unquote("String"),
		participle.CaseInsensitive("Keyword"),
		participle.Elide("Whitespace"),
		participle.UseLookahead(2),
	)
)

// ParseCriteria parses a criteria expression. Field names are storage, ram,
// hdisk (or disk), location, limit and offset; only ram accepts an IN list.
func ParseCriteria(input string) (Criteria, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Criteria{}, fmt.Errorf("empty expression")
	}

	ast, err := criteriaParser.ParseString("", input)
	if err != nil {
		return Criteria{}, fmt.Errorf("parse error: %w", err)
	}
	return ast.ToCriteria()
}

// ToCriteria validates field names and values
func (a *ASTCriteria) ToCriteria() (Criteria, error) {
	var c Criteria
	for _, clause := range a.Clauses {
		field := strings.ToLower(clause.Field)

		if clause.In != nil {
			if field != "ram" {
				return Criteria{}, fmt.Errorf("field %q does not accept a list", clause.Field)
			}
			items := make([]string, len(clause.In))
			for i, v := range clause.In {
				items[i] = strings.TrimSpace(v)
			}
			c.RAM = strings.Join(items, ",")
			continue
		}

		value := clause.Value.String()
		switch field {
		case "storage":
			c.Storage = value
		case "ram":
			c.RAM = value
		case "hdisk", "disk":
			c.HDisk = value
		case "location":
			c.Location = value
		case "limit", "offset":
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 {
				return Criteria{}, fmt.Errorf("%s must be a non-negative integer, got %q", field, value)
			}
			if field == "limit" {
				c.Limit = n
			} else {
				c.Offset = n
			}
		default:
			return Criteria{}, fmt.Errorf("unknown field %q", clause.Field)
		}
	}
	return c, nil
}
