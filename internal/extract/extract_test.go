package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func value(t *testing.T, text, slot string) string {
	t.Helper()
	f, ok := Extract(text).Get(slot)
	require.True(t, ok, "slot %q not extracted from %q", slot, text)
	return f.Value
}

func TestExtract_ExactValues(t *testing.T) {
	tests := []struct {
		text string
		slot string
		want string
	}{
		{"My name is Alice", "name", "Alice"},
		{"Call me Bob", "name", "Bob"},
		{"I'm Sarah", "name", "Sarah"},
		{"Nick not Ben", "name", "Nick"},
		{"Hi Mike! How was the trip?", "name", "Mike"},
		{"I work at Microsoft", "employer", "Microsoft"},
		{"I work for Amazon", "employer", "Amazon"},
		{"I work for myself", "employer", "self-employed"},
		{"You currently work at Microsoft", "employer", "Microsoft"},
		{"User is employed by Microsoft as a Software Engineer", "employer", "Microsoft"},
		{"John is a Software Engineer at Microsoft", "employer", "Microsoft"},
		{"User lives in Seattle and works at Microsoft", "employer", "Microsoft"},
		{"User lives in Seattle and works at Microsoft", "location", "Seattle"},
		{"I live in Seattle", "location", "Seattle"},
		{"I moved to Denver", "location", "Denver"},
		{"My role is Senior Developer", "title", "Senior Developer"},
		{"You work at Microsoft as a Product Manager", "title", "Product Manager"},
		{"You were promoted to Senior Engineer", "title", "Senior Engineer"},
		{"My favorite color is blue", "favorite_color", "blue"},
		{"I've been programming for 10 years", "programming_years", "10"},
		{"I started with Python", "first_language", "Python"},
		{"My undergraduate degree was from MIT", "undergrad_school", "MIT"},
		{"My master's degree was from Stanford", "masters_school", "Stanford"},
		{"I graduated in 2020", "graduation_year", "2020"},
		{"You studied CS at Stanford", "school", "Stanford"},
		{"You have a degree in Computer Science", "major", "Computer Science"},
		{"User studied Computer Science", "major", "Computer Science"},
		{"You graduated with a minor in Mathematics", "minor", "Mathematics"},
		{"I have two siblings", "siblings", "2"},
		{"I speak three languages", "languages_spoken", "3"},
		{"I have a golden retriever named Murphy", "pet", "golden retriever"},
		{"I have a golden retriever named Murphy", "pet_name", "Murphy"},
		{"I prefer dark roast", "coffee", "dark roast"},
		{"My hobby is rock climbing", "hobby", "rock climbing"},
		{"User lives with 2 kids", "children", "2"},
		{"Your email is alice@example.com", "email", "alice@example.com"},
		{"My project is called CRT", "project", "CRT"},
		{"My favorite programming language is Rust", "programming_language", "Rust"},
		{"You previously worked at Amazon", "previous_employer", "Amazon"},
		{"I'm 32 years old", "age", "32"},
		{"My age is 28", "age", "28"},
		{"I am 45", "age", "45"},
		{"I was born in 1992", "birth_year", "1992"},
		{"I'm vegan", "diet", "vegan"},
		{"I am keto", "diet", "keto"},
		{"The port is 8080", "port", "8080"},
		{"The password is hunter2", "password", "hunter2"},
	}
	for _, tt := range tests {
		t.Run(tt.text+"/"+tt.slot, func(t *testing.T) {
			assert.Equal(t, tt.want, value(t, tt.text, tt.slot))
		})
	}
}

func TestExtract_NormalizedContains(t *testing.T) {
	tests := []struct {
		text string
		slot string
		want string
	}{
		{"My birthday is March 15", "birthday", "march 15"},
		{"Our anniversary is June 1", "anniversary", "june 1"},
		{"The budget is $50,000", "budget", "50,000"},
		{"I weigh 180 lbs", "weight", "180"},
		{"I have 3 monitors on my desk", "monitor", "3"},
		{"We have five servers running", "server", "5"},
		{"My favorite movie is The Matrix", "favorite_movie", "matrix"},
		{"My favorite food is sushi", "favorite_food", "sushi"},
		{"My favourite sport is tennis", "favorite_sport", "tennis"},
		{"I think remote work is more productive", "opinion", "remote"},
		{"I believe AI will transform healthcare", "opinion", "ai"},
		{"My goal is to run a marathon this year", "goal", "marathon"},
		{"I plan to learn Rust this summer", "goal", "rust"},
		{"I don't like pineapple on pizza", "dislike", "pineapple"},
		{"I'm allergic to shellfish", "dislike", "shellfish"},
		{"We're using Python 3.11", "python_version", "3.11"},
		{"Our database is PostgreSQL", "database", "postgresql"},
		{"We're using MongoDB for persistence", "database", "mongodb"},
		{"I use Ubuntu 22.04", "os", "ubuntu"},
		{"My editor is VS Code", "editor", "vs code"},
		{"Built with Django", "framework", "django"},
		{"Deployed on AWS", "cloud", "aws"},
		{"Timeout is 30s", "timeout", "30"},
		{"The API is at https://api.example.com/v1", "api_url", "api.example.com"},
		{"My car is a 2020 Tesla Model 3", "car", "tesla"},
		{"The cache is set to 512mb", "cache", "512"},
		{"max memory equals 16gb", "max_memory", "16gb"},
		{"User is married to my wife", "relationship", "wife"},
		{"Your phone number is 555-1234", "phone", "555-1234"},
		{"User is proficient in Python and JavaScript", "skill", "python"},
		{"You enjoy hiking and cooking", "hobby", "hiking"},
		{"You use Python, JavaScript, Ruby, and Go", "programming_language", "javascript"},
	}
	for _, tt := range tests {
		t.Run(tt.text+"/"+tt.slot, func(t *testing.T) {
			f, ok := Extract(tt.text).Get(tt.slot)
			require.True(t, ok)
			assert.Contains(t, f.Normalized, tt.want)
		})
	}
}

func TestExtract_PresenceOnly(t *testing.T) {
	tests := []struct {
		text string
		slot string
	}{
		{"Born on January 5, 1990", "birthday"},
		{"The deadline is March 15, 2026", "end_date"},
		{"My salary is $150k", "salary"},
		{"My height is 5'11\"", "height"},
		{"Running Node 18.2.0", "node_version"},
		{"Our mascot is a golden eagle", "mascot"},
		{"I am a Software Engineer from Seattle", "occupation"},
		{"I am a Software Engineer from Seattle", "location"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.True(t, Extract(tt.text).Has(tt.slot))
		})
	}
}

func TestExtract_Structured(t *testing.T) {
	tests := []struct {
		text string
		slot string
		want string
	}{
		{"FACT: name = Bob", "name", "Bob"},
		{"FACT: timezone = America/New_York", "timezone", "America/New_York"},
		{"FACT: pronouns = they/them", "pronouns", "they/them"},
		{"FACT: deployment_region = us-east-1", "deployment_region", "us-east-1"},
		{"PREF: communication_style = concise", "communication_style", "concise"},
		{"  fact: Database = PostgreSQL  ", "database", "PostgreSQL"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			facts := Extract(tt.text)
			require.Equal(t, 1, facts.Len())
			f, ok := facts.Get(tt.slot)
			require.True(t, ok)
			assert.Equal(t, tt.want, f.Value)
			assert.Equal(t, SourcePattern, f.Source)
		})
	}
}

func TestExtract_MultipleFacts(t *testing.T) {
	facts := Extract("My name is Alice and I work at Microsoft in Seattle")

	assert.Equal(t, "Alice", value(t, "My name is Alice and I work at Microsoft in Seattle", "name"))
	employer, _ := facts.Get("employer")
	location, _ := facts.Get("location")
	assert.Equal(t, "Microsoft", employer.Value)
	assert.Equal(t, "Seattle", location.Value)
	assert.Equal(t, "seattle", location.Normalized)
}

func TestExtract_Negative(t *testing.T) {
	tests := []struct {
		name string
		text string
		slot string
	}{
		{"stopword after i'm", "I'm good", "name"},
		{"ready is not a name", "I'm ready", "name"},
		{"noise subject", "The thing is that I don't know yet", "thing"},
		{"blocklisted subject", "The problem is a tricky one", "problem"},
		{"counted siblings not duplicated", "I have 2 siblings", "sibling"},
		{"greeting filler", "Hi there, welcome back", "name"},
		{"infinitive likes", "I like to code", "likes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, Extract(tt.text).Has(tt.slot))
		})
	}
}

func TestExtract_Empty(t *testing.T) {
	assert.Equal(t, 0, Extract("").Len())
	assert.Equal(t, 0, Extract("   ").Len())
	assert.Equal(t, 0, Extract("Hello, how are you?").Len())
}

func TestExtract_NoStraySlotsForMigration(t *testing.T) {
	facts := Extract("We migrated to PostgreSQL last quarter")
	assert.Equal(t, 0, facts.Len(), "unexpected slots: %v", facts.Slots())
}

func TestSplitCompoundValues(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"commas", "Python, JavaScript, Ruby", []string{"Python", "JavaScript", "Ruby"}},
		{"and", "Python and JavaScript", []string{"Python", "JavaScript"}},
		{"or", "Python or Go", []string{"Python", "Go"}},
		{"oxford and", "Python, JavaScript, and Ruby", []string{"Python", "JavaScript", "Ruby"}},
		{"oxford or", "Python, JavaScript, or Ruby", []string{"Python", "JavaScript", "Ruby"}},
		{"mixed", "Python, JavaScript and Go", []string{"Python", "JavaScript", "Go"}},
		{"slashes", "Python/JavaScript/Ruby", []string{"Python", "JavaScript", "Ruby"}},
		{"semicolons", "Python; JavaScript; Ruby", []string{"Python", "JavaScript", "Ruby"}},
		{"single", "Python", []string{"Python"}},
		{"multi word", "Computer Science, Data Science, and Machine Learning", []string{"Computer Science", "Data Science", "Machine Learning"}},
		{"upper case connectives", "Python AND JavaScript OR Ruby", []string{"Python", "JavaScript", "Ruby"}},
		{"trailing and", "Python, JavaScript, Ruby, and", []string{"Python", "JavaScript", "Ruby"}},
		{"lines", "Python\nJavaScript\nRuby", []string{"Python", "JavaScript", "Ruby"}},
		{"bullets", "• Python\n• JavaScript\n• Ruby", []string{"Python", "JavaScript", "Ruby"}},
		{"padding", "  Python  ,  JavaScript  ,  Ruby  ", []string{"Python", "JavaScript", "Ruby"}},
		{"digits", "C++, Python3, Go1.19", []string{"C++", "Python3", "Go1.19"}},
		{"sharps", "C#, F#, C++", []string{"C#", "F#", "C++"}},
		{"empty items", "Python,,,JavaScript,,Ruby", []string{"Python", "JavaScript", "Ruby"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitCompoundValues(tt.in))
		})
	}

	assert.Empty(t, SplitCompoundValues(""))
	assert.Empty(t, SplitCompoundValues("   "))
	assert.Len(t, SplitCompoundValues("full-stack, back-end, and front-end"), 3)
}

func TestIsQuestion(t *testing.T) {
	for _, q := range []string{"What is your name?", "Where do you work?", "How are you?", "Can you help me?", "tell me about Rust"} {
		assert.True(t, IsQuestion(q), q)
	}
	for _, s := range []string{"My name is Alice", "I work at Microsoft", "Hello there", ""} {
		assert.False(t, IsQuestion(s), s)
	}
}

func TestParseMemoryFact(t *testing.T) {
	slot, val, ok := ParseMemoryFact("FACT: Employer = Acme Corp ")
	require.True(t, ok)
	assert.Equal(t, "employer", slot)
	assert.Equal(t, "Acme Corp", val)

	_, _, ok = ParseMemoryFact("I work at Acme")
	assert.False(t, ok)
	_, _, ok = ParseMemoryFact("PREF: style = concise")
	assert.False(t, ok)
}

func TestMemoryClaims(t *testing.T) {
	assert.True(t, HasMemoryClaim("I remember you work at Google"))
	assert.True(t, HasMemoryClaim("In my notes you're listed in Denver"))
	assert.False(t, HasMemoryClaim("You work at Google"))
	assert.False(t, HasMemoryClaim(""))

	assert.True(t, IsMemoryClaimLine("I've got you down as a designer"))
	assert.True(t, IsMemoryClaimLine("I have a memory of that"))
	assert.False(t, IsMemoryClaimLine("You are a designer"))
}

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "hello world", NormalizeText("  Hello \n\t World "))
	assert.Equal(t, "", NormalizeText(""))
}

func TestSplitCompoundValues_Idempotent(t *testing.T) {
	inputs := []string{
		"Python, JavaScript, and Ruby",
		"Computer Science and Machine Learning",
		"C#, F#, C++",
		"• Python\n• Go",
		"Python",
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			for _, part := range SplitCompoundValues(in) {
				assert.Equal(t, []string{part}, SplitCompoundValues(part))
			}
		})
	}
}
