package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediahist/mdsl/internal/token"
)

// kinds strips positions so tests can compare the token shape only.
func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestTokenizeUnitDeclaration(t *testing.T) {
	toks, err := Tokenize(`UNIT MediaOutlet { id: ID PRIMARY KEY }`)
	require.NoError(t, err)

	assert.Equal(t, []token.Kind{
		token.KwUnit, token.Identifier, token.LBrace,
		token.KwID, token.Colon, token.KwID, token.KwPrimary, token.KwKey,
		token.RBrace, token.EOF,
	}, kinds(toks))
	assert.Equal(t, "MediaOutlet", toks[1].Text)
}

func TestKeywordsCaseInsensitive(t *testing.T) {
	toks, err := Tokenize("family Family FAMILY")
	require.NoError(t, err)

	require.Len(t, toks, 4)
	for _, tok := range toks[:3] {
		assert.Equal(t, token.KwFamily, tok.Kind)
	}
	// Source casing survives on the token text.
	assert.Equal(t, "family", toks[0].Text)
	assert.Equal(t, "Family", toks[1].Text)
}

func TestBooleanLiteralCollapse(t *testing.T) {
	toks, err := Tokenize("true FALSE True")
	require.NoError(t, err)

	require.Len(t, toks, 4)
	assert.Equal(t, token.Boolean, toks[0].Kind)
	assert.True(t, toks[0].Bool)
	assert.Equal(t, token.Boolean, toks[1].Kind)
	assert.False(t, toks[1].Bool)
	assert.True(t, toks[2].Bool)
}

func TestPositionsAreOneBased(t *testing.T) {
	toks, err := Tokenize("a\n  b")
	require.NoError(t, err)

	require.Len(t, toks, 4) // a, newline, b, EOF
	assert.Equal(t, token.Position{Line: 1, Column: 1, Offset: 0}, toks[0].Pos)
	assert.Equal(t, token.Position{Line: 1, Column: 2, Offset: 1}, toks[1].Pos)
	assert.Equal(t, token.Position{Line: 2, Column: 3, Offset: 4}, toks[2].Pos)
}

func TestStringEscapes(t *testing.T) {
	toks, err := Tokenize(`"a\n\t\r\\\"b"`)
	require.NoError(t, err)

	require.Equal(t, token.String, toks[0].Kind)
	assert.Equal(t, "a\n\t\r\\\"b", toks[0].Str)
}

func TestInvalidEscape(t *testing.T) {
	_, err := Tokenize(`"a\qb"`)
	require.Error(t, err)

	var lexErr *Error
	require.ErrorAs(t, err, &lexErr)
	assert.Equal(t, InvalidEscape, lexErr.Kind)
}

func TestUnterminatedString(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"eof inside literal", `"abc`},
		{"newline inside literal", "\"abc\ndef\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Tokenize(tt.src)
			require.Error(t, err)

			var lexErr *Error
			require.ErrorAs(t, err, &lexErr)
			assert.Equal(t, UnterminatedString, lexErr.Kind)
			assert.Equal(t, 1, lexErr.Pos.Line)
			assert.Equal(t, 1, lexErr.Pos.Column)
		})
	}
}

func TestUnterminatedBlockCommentReusesStringKind(t *testing.T) {
	_, err := Tokenize("x /* never closed")
	require.Error(t, err)

	var lexErr *Error
	require.ErrorAs(t, err, &lexErr)
	assert.Equal(t, UnterminatedString, lexErr.Kind)
	assert.Equal(t, 3, lexErr.Pos.Column)
}

func TestComments(t *testing.T) {
	toks, err := Tokenize("// slashes\n# hash\n/* block */ x")
	require.NoError(t, err)

	assert.Equal(t, []token.Kind{
		token.LineComment, token.Newline,
		token.LineComment, token.Newline,
		token.BlockComment, token.Identifier, token.EOF,
	}, kinds(toks))
	assert.Equal(t, "// slashes", toks[0].Text)
	assert.Equal(t, "# hash", toks[2].Text)
	assert.Equal(t, "/* block */", toks[4].Text)
}

func TestNumbers(t *testing.T) {
	toks, err := Tokenize("200001 3.75 1.")
	require.NoError(t, err)

	assert.Equal(t, token.Number, toks[0].Kind)
	assert.Equal(t, 200001.0, toks[0].Num)
	assert.Equal(t, 3.75, toks[1].Num)
	// `1.` is number 1 followed by a '.' token: a bare dot never
	// starts or extends a number.
	assert.Equal(t, token.Number, toks[2].Kind)
	assert.Equal(t, 1.0, toks[2].Num)
	assert.Equal(t, token.Dot, toks[3].Kind)
}

func TestIdentifierWithDots(t *testing.T) {
	toks, err := Tokenize("graphv3.mo_year")
	require.NoError(t, err)

	require.Equal(t, token.Identifier, toks[0].Kind)
	assert.Equal(t, "graphv3.mo_year", toks[0].Text)
}

func TestAnnotations(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		annName string
		payload string
	}{
		{"bare", "@comment", "comment", ""},
		{"string payload", `@maps_to "31_umbrella"`, "maps_to", "31_umbrella"},
		{"assigned payload", `@maps_to = "mo_year"`, "maps_to", "mo_year"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, err := Tokenize(tt.src)
			require.NoError(t, err)

			require.Equal(t, token.Annotation, toks[0].Kind)
			assert.Equal(t, tt.annName, toks[0].Text)
			assert.Equal(t, tt.payload, toks[0].Str)
		})
	}
}

func TestUnexpectedCharacter(t *testing.T) {
	_, err := Tokenize("a ^ b")
	require.Error(t, err)

	var lexErr *Error
	require.ErrorAs(t, err, &lexErr)
	assert.Equal(t, UnexpectedChar, lexErr.Kind)
	assert.Equal(t, 3, lexErr.Pos.Column)
}

func TestNewlinesAreTokens(t *testing.T) {
	toks, err := Tokenize("a\nb\n")
	require.NoError(t, err)
	assert.Equal(t, []token.Kind{
		token.Identifier, token.Newline, token.Identifier, token.Newline, token.EOF,
	}, kinds(toks))
}

// Relexing the concatenated token texts must reproduce the same
// stream (whitespace-normalization aside).
func TestRelexStability(t *testing.T) {
	src := `FAMILY "F" { OUTLET "O" { identity { id = 200001 ; title = "X" ; } } }`
	first, err := Tokenize(src)
	require.NoError(t, err)

	var rebuilt string
	for _, tok := range first {
		if tok.Kind == token.EOF {
			break
		}
		rebuilt += tok.Text + " "
	}
	second, err := Tokenize(rebuilt)
	require.NoError(t, err)
	assert.Equal(t, kinds(first), kinds(second))
}
