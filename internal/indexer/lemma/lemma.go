// Package lemma maps surface tokens to the canonical terms used as inverted
// index keys. Resolvers are pure: the same token always yields the same,
// non-empty list of terms, and a token nobody knows resolves to itself.
package lemma

// Resolver maps one token to one or more canonical terms.
type Resolver interface {
	Lemmatize(token string) []string
}

// Func adapts an ordinary function to Resolver.
type Func func(token string) []string

func (f Func) Lemmatize(token string) []string {
	if terms := f(token); len(terms) > 0 {
		return terms
	}
	return []string{token}
}

// Identity resolves every token to itself.
var Identity Resolver = Func(func(token string) []string { return []string{token} })

// Terms resolves token through r and drops duplicate forms, so a token whose
// dictionary entry repeats a lemma still counts once.
func Terms(r Resolver, token string) []string {
	terms := r.Lemmatize(token)
	if len(terms) == 0 {
		return []string{token}
	}
	if len(terms) == 1 {
		return terms
	}
	out := make([]string, 0, len(terms))
	seen := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// Set returns the union of lemma forms of every token.
func Set(r Resolver, tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		for _, t := range Terms(r, tok) {
			set[t] = struct{}{}
		}
	}
	return set
}

type fallback struct {
	dict *Dictionary
	next Resolver
}

// WithFallback answers from dict when it knows the token and from next
// otherwise.
func WithFallback(dict *Dictionary, next Resolver) Resolver {
	return fallback{dict: dict, next: next}
}

func (f fallback) Lemmatize(token string) []string {
	if terms, ok := f.dict.Lookup(token); ok {
		return terms
	}
	return f.next.Lemmatize(token)
}
