// Package corpus loads the writing-sample corpus and answers sampling queries.
//
// A corpus source is a directory of plain-text or Markdown documents. Each
// document may carry YAML front matter and may hold several samples separated
// by a delimiter line. Markdown is reduced to prose before use so code, HTML,
// and headings never reach the style extractor.
//
// Store owns the loaded samples. Sample(n) returns a diversity-maximising
// subset that is fully determined by the configured seed and the corpus
// content, and Version identifies the content for descriptor caching.
package corpus
