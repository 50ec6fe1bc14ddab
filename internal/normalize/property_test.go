package normalize

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func isTokenRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_'
}

// genCyrillicString produces strings drawn from the basic Cyrillic lowercase
// block, the alphabet the transliteration step must handle at minimum.
func genCyrillicString() gopter.Gen {
	return gen.SliceOfN(12, gen.RuneRange('а', 'я')).Map(func(rs []rune) string {
		return string(rs)
	})
}

func TestNormalizeProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("output stays within [a-z0-9_]", prop.ForAll(
		func(s string) bool {
			for _, r := range Normalize(s) {
				if !isTokenRune(r) {
					return false
				}
			}
			return true
		},
		gen.AnyString(),
	))

	properties.Property("normalizing twice equals normalizing once", prop.ForAll(
		func(s string) bool {
			once := Normalize(s)
			return Normalize(once) == once
		},
		gen.AnyString(),
	))

	properties.Property("cyrillic input yields a pure token", prop.ForAll(
		func(s string) bool {
			out := Normalize(s)
			for _, r := range out {
				if !isTokenRune(r) {
					return false
				}
			}
			return true
		},
		genCyrillicString(),
	))

	properties.Property("alpha input survives as itself lowercased", prop.ForAll(
		func(s string) bool {
			out := Normalize(s)
			return len(out) == len(s)
		},
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
