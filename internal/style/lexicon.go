package style

func set(words ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		out[w] = struct{}{}
	}
	return out
}

// functionWords never carry topic. They survive masking regardless of support.
var functionWords = set(
	"a", "an", "the", "this", "that", "these", "those", "some", "any", "all", "each", "every", "no", "not",
	"i", "me", "my", "mine", "myself", "we", "us", "our", "ours", "you", "your", "yours",
	"he", "him", "his", "she", "her", "hers", "it", "its", "they", "them", "their", "theirs",
	"is", "am", "are", "was", "were", "be", "been", "being", "do", "does", "did", "done",
	"have", "has", "had", "will", "would", "shall", "should", "can", "could", "may", "might", "must",
	"of", "in", "on", "at", "to", "for", "from", "by", "with", "about", "into", "onto", "over", "under",
	"up", "down", "out", "off", "than", "as", "if", "when", "while", "what", "which", "who", "whom",
	"whose", "where", "why", "how", "there", "here", "just", "very", "too", "more", "most", "much",
	"many", "few", "less", "own", "same", "such", "only", "even", "ever", "never", "again", "now",
	"or", "nor", "get", "got", "getting", "one", "thing", "things", "way", "lot", "really",
)

// connectives is the closed lexicon of discourse connectives tracked as a
// style signal.
var connectives = set(
	"and", "but", "so", "because", "though", "although", "however", "anyway", "still", "then",
	"also", "actually", "basically", "honestly", "meanwhile", "instead", "plus", "yet",
	"otherwise", "besides", "therefore", "literally", "seriously", "frankly", "look", "like",
)

var profanity = set(
	"damn", "damned", "hell", "shit", "shitty", "fuck", "fucking", "fucked", "crap", "crappy",
	"ass", "bloody", "bullshit", "goddamn", "piss", "pissed", "bastard",
)

var firstPerson = set(
	"i", "me", "my", "mine", "myself", "we", "us", "our", "ours",
	"i'm", "i've", "i'd", "i'll", "we're", "we've", "we'd", "we'll",
)

// markers are hedges, intensifiers, and interjections. Together with -ly
// adverbs they form the candidate style vocabulary.
var markers = set(
	"pretty", "totally", "kinda", "sorta", "super", "absolutely", "definitely", "maybe", "probably",
	"quite", "rather", "somewhat", "ugh", "wow", "yeah", "okay", "ok", "nope", "yep", "huh", "hmm",
	"whatever", "simply", "truly", "clearly", "obviously", "apparently", "hardly", "barely",
	"almost", "always", "often", "sometimes", "usually", "love", "hate", "worst", "best", "stand",
)

func has(lexicon map[string]struct{}, word string) bool {
	_, ok := lexicon[word]
	return ok
}
