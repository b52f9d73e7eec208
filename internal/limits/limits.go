// Package limits holds the resource ceilings the parser enforces while
// consuming untrusted CommerceTXT documents. The shard generator does
// not read them; its output is bounded only by what the parser kept.
package limits

// Limits bounds how much of a document the parser will consume. All
// breaches degrade to a warning; nothing panics.
type Limits struct {
	// MaxLineLength is the longest line the parser accepts before
	// truncating it.
	MaxLineLength int

	// MaxSections is the most sections a single document may declare.
	MaxSections int

	// MaxEntriesPerSection is the most flat keys or list items a single
	// section may hold.
	MaxEntriesPerSection int

	// MaxTotalBytes is the largest input the parser will read before it
	// stops consuming further lines.
	MaxTotalBytes int64
}

// Default returns the limits specified in the CommerceTXT protocol.
func Default() Limits {
	return Limits{
		MaxLineLength:        8192,
		MaxSections:          1000,
		MaxEntriesPerSection: 10000,
		MaxTotalBytes:        10 * 1024 * 1024,
	}
}
