package scoring

import "slices"

// Mood transition scores.
const (
	moodSame      = 1.0
	moodGoodNext  = 0.8
	moodRelated   = 0.6
	moodUnrelated = 0.3
)

// goodTransitions lists moods that follow naturally from a given mood.
var goodTransitions = map[string][]string{
	"happy":       {"euphoric", "energetic", "uplifting", "playful", "excited"},
	"joyful":      {"happy", "euphoric", "uplifting"},
	"euphoric":    {"energetic", "happy", "excited"},
	"energetic":   {"euphoric", "intense", "excited", "confident"},
	"excited":     {"energetic", "euphoric", "happy"},
	"uplifting":   {"happy", "hopeful", "euphoric"},
	"hopeful":     {"uplifting", "happy", "joyful"},
	"confident":   {"energetic", "empowered", "intense"},
	"playful":     {"happy", "excited", "carefree"},
	"calm":        {"peaceful", "relaxed", "dreamy", "chill"},
	"peaceful":    {"calm", "relaxed", "dreamy"},
	"relaxed":     {"calm", "chill", "peaceful", "dreamy"},
	"chill":       {"relaxed", "calm", "dreamy"},
	"dreamy":      {"calm", "romantic", "peaceful"},
	"romantic":    {"dreamy", "nostalgic", "peaceful"},
	"sad":         {"melancholic", "nostalgic", "hopeful"},
	"melancholic": {"sad", "nostalgic", "dreamy", "hopeful"},
	"nostalgic":   {"melancholic", "romantic", "hopeful"},
	"angry":       {"aggressive", "intense", "dark"},
	"aggressive":  {"angry", "intense", "energetic"},
	"intense":     {"energetic", "aggressive", "dark"},
	"dark":        {"intense", "melancholic", "aggressive"},
	"anxious":     {"intense", "dark", "melancholic"},
}

// relatedMoods lists moods close to a given mood without being a natural next step.
var relatedMoods = map[string][]string{
	"happy":       {"joyful", "cheerful", "content", "hopeful"},
	"joyful":      {"cheerful", "excited", "playful"},
	"euphoric":    {"ecstatic", "uplifting", "joyful"},
	"energetic":   {"upbeat", "lively", "powerful"},
	"excited":     {"playful", "upbeat", "joyful"},
	"uplifting":   {"inspiring", "joyful", "confident"},
	"hopeful":     {"optimistic", "inspiring", "peaceful"},
	"confident":   {"powerful", "upbeat"},
	"playful":     {"joyful", "cheerful", "upbeat"},
	"calm":        {"serene", "tranquil", "mellow"},
	"peaceful":    {"serene", "tranquil", "hopeful"},
	"relaxed":     {"mellow", "laid-back", "serene"},
	"chill":       {"mellow", "laid-back", "peaceful"},
	"dreamy":      {"ethereal", "atmospheric", "nostalgic"},
	"romantic":    {"sensual", "tender", "passionate"},
	"sad":         {"somber", "gloomy", "heartbroken", "lonely"},
	"melancholic": {"somber", "wistful", "bittersweet"},
	"nostalgic":   {"wistful", "bittersweet", "dreamy"},
	"angry":       {"furious", "frustrated", "rebellious"},
	"aggressive":  {"fierce", "rebellious", "dark"},
	"intense":     {"dramatic", "powerful", "angry"},
	"dark":        {"brooding", "ominous", "sad"},
	"anxious":     {"tense", "restless", "nervous"},
}

// MoodTransitionScore rates moving from one mood to another: 1.0 for the same mood,
// 0.8 for a curated good transition, 0.6 for a related mood and 0.3 otherwise.
func MoodTransitionScore(from, to string) float64 {
	from, to = Normalize(from), Normalize(to)
	if from == to {
		return moodSame
	}
	if slices.Contains(goodTransitions[from], to) {
		return moodGoodNext
	}
	if slices.Contains(relatedMoods[from], to) {
		return moodRelated
	}
	return moodUnrelated
}
