package shortcode

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Category tags the kind of text a placeholder protects.
type Category string

const (
	CategoryCodeBlock  Category = "CODEBLOCK"
	CategoryInlineCode Category = "INLINECODE"
	CategoryHTMLCode   Category = "HTMLCODE"
	CategoryHTMLPre    Category = "HTMLPRE"
)

// Token is a placeholder issued by a Vault. Sequence and Category travel with
// the token so restoration never parses them back out of Value.
type Token struct {
	Value    string
	Sequence int
	Category Category
}

type vaultEntry struct {
	token    Token
	original string
}

// Vault stores protected text for the duration of a single Process call.
// It is not safe for concurrent use.
type Vault struct {
	prefix   string
	sequence int
	entries  []vaultEntry
}

// VaultOption customises a Vault.
type VaultOption func(*Vault)

// WithTokenPrefix fixes the token prefix. Tests use it to build content that
// contains token shaped text.
func WithTokenPrefix(prefix string) VaultOption {
	return func(v *Vault) {
		if prefix != "" {
			v.prefix = prefix
		}
	}
}

// NewVault returns an empty vault with a random per-vault token prefix.
func NewVault(opts ...VaultOption) *Vault {
	v := &Vault{
		prefix: "SC" + strings.ReplaceAll(uuid.NewString(), "-", "") + "_",
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Prefix reports the token prefix in use.
func (v *Vault) Prefix() string {
	return v.prefix
}

// Issue returns the next token for category.
func (v *Vault) Issue(category Category) Token {
	v.sequence++
	return Token{
		Value:    v.prefix + string(category) + "_" + strconv.Itoa(v.sequence) + "___",
		Sequence: v.sequence,
		Category: category,
	}
}

// Store records original as the text token stands in for.
func (v *Vault) Store(token Token, original string) {
	v.entries = append(v.entries, vaultEntry{token: token, original: original})
}

// Protect issues a token for category, stores original under it and returns
// the token value to splice into the content.
func (v *Vault) Protect(category Category, original string) string {
	token := v.Issue(category)
	v.Store(token, original)
	return token.Value
}

// Len reports the number of stored entries.
func (v *Vault) Len() int {
	return len(v.entries)
}

// RestoreAll replaces every stored token in content with its original text,
// highest sequence first, and empties the vault. A region protected by a later
// pass may contain earlier tokens; restoring it first re-exposes those tokens
// for the lower sequence replacements that follow.
func (v *Vault) RestoreAll(content string) string {
	if len(v.entries) == 0 {
		return content
	}

	ordered := slices.Clone(v.entries)
	slices.SortFunc(ordered, func(a, b vaultEntry) int {
		return cmp.Compare(b.token.Sequence, a.token.Sequence)
	})

	for _, entry := range ordered {
		content = strings.ReplaceAll(content, entry.token.Value, entry.original)
	}

	v.entries = v.entries[:0]
	return content
}
