// Package config loads, normalizes, and validates mediabuddy configuration.
//
// Configuration lives in a TOML file (default ~/.config/mediabuddy/config.toml,
// falling back to ./mediabuddy.toml) and is layered over Default(). After
// decoding, normalize fills blanks, expands ~ in paths, and pulls API keys from
// the environment (a .env file in the working directory is honoured). Validate
// then rejects values the pipeline cannot run with.
//
// Sections:
//   - Paths: corpus, output, data, and log directories
//   - Corpus: sample file discovery, section delimiter, sampling size and seed
//   - Style: excerpt count and the corpus-support threshold for content words
//   - Generation: provider, model, timeouts, retry policy, length tolerance
//   - Voice: author name, default mode and length, descriptor cache size
//   - EditLog: edit-learning database and history window
//   - Logging: log format and level
package config
