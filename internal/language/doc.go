// Package language maps between ISO 639 language codes and the display
// names shown in reminder mails. The table covers the audio languages
// that actually appear in TMDB payloads and Portuguese TV guides; codes
// outside it pass through unchanged.
package language
