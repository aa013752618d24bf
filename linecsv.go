// # linecsv: Line-Oriented CSV Tokenizing for Go
//
// linecsv turns raw CSV lines into ordered field lists and renders field lists back into lines. It ships two
// interchangeable tokenizers behind the Parser interface and a streaming Reader/Writer pair built on top of them.
//
// # Features
//
// - LenientParser: escape character, strict-quotes and ignore-quotations modes, heuristic handling of quotes in the middle of a field.
// - RFC4180Parser: doubled quotes as the only escape, position scanning between separators and quotes.
// - Multi-line records through an explicit Pending value, so a single parser can serve many streams concurrently.
// - Null field policy (`Neither`, `EmptySeparators`, `EmptyQuotes`, `Both`) applied on read and honoured on render.
// - Reader with a multi-line limit, skip lines and record width enforcement; buffered Writer with forced quoting.
// - Localised error messages via a swappable message Catalog.
//
// # Getting Started
//
//	p, err := linecsv.NewParserBuilder().WithSeparator(';').Build()
//	if err != nil {
//		// configuration conflict
//	}
//	rec, err := p.ParseLine(`a;"b;c";d`)
//
// Multi-line records are parsed by threading the Pending value through successive calls:
//
//	var pending linecsv.Pending
//	rec, pending, err := p.ParseLineMulti(line, pending)
//	if pending.IsOpen() {
//		// feed the next physical line
//	}
package linecsv
