// Package editlog records how the user edits generated text and turns that
// history into topic-free style recommendations.
//
// Sessions live in a SQLite database. Each session stores the generated and
// edited text with an Analysis (word counts, length ratio, edit magnitude and
// detected edit types). Recommendations aggregate the most recent sessions;
// their notes are safe to place in a prompt's STYLE partition because they
// never quote the edited text or its topic.
package editlog
