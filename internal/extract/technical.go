package extract

import (
	"strings"

	"github.com/Harshitk-cp/groundcheck/internal/domain"
	"github.com/Harshitk-cp/groundcheck/internal/rx"
)

const (
	versionedTech = `(?:Python|Java|JavaScript|TypeScript|Node(?:\.?js)?|Ruby|Go|Rust|` +
		`C\+\+|C#|Swift|Kotlin|PHP|Perl|Scala|Elixir|Dart|R|Julia|` +
		`React|Angular|Vue|Svelte|Next\.?js|Django|Flask|FastAPI|` +
		`Spring\s?Boot|Rails|Laravel|Express|NestJS|` +
		`PostgreSQL|MySQL|MongoDB|Redis|SQLite|DynamoDB|` +
		`Docker|Kubernetes|Terraform|Ansible|` +
		`Ubuntu|Debian|CentOS|Fedora|macOS|Windows|Linux|` +
		`AWS|GCP|Azure|Vercel|Netlify|Heroku|` +
		`Nginx|Apache|Caddy|HAProxy|` +
		`Git|GitHub|GitLab|Bitbucket|` +
		`VS\s?Code|Vim|Neovim|Emacs|IntelliJ|PyCharm|WebStorm)`

	codingLanguages = `Python|Java|JavaScript|TypeScript|Ruby|Go|Rust|` +
		`C\+\+|C#|Swift|Kotlin|PHP|Perl|Scala|Elixir|Dart|Julia|` +
		`Lua|Haskell|Clojure|F#|OCaml|Zig|Carbon|Mojo`
)

var (
	versionRe       = rx.I(`\b` + versionedTech + `\s+v?(\d+(?:\.\d+){0,3})\b`)
	versionSuffix   = rx.C(`\s+v?\d+(?:\.\d+){0,3}$`)
	techNameRunes   = rx.C(`[\s.#+]+`)
	databaseIsRe    = rx.I(`\b(?:our )?(?:database|db)\s+(?:is|:)\s+([A-Z][A-Za-z0-9\s+#]{1,30}?)(?:\.|,|;|\s*$)`)
	usingDatabaseRe = rx.I(`\busing\s+(PostgreSQL|MySQL|MongoDB|Redis|SQLite|` +
		`DynamoDB|Cassandra|CouchDB|Neo4j|MariaDB|Oracle|` +
		`SQL Server|Supabase|Firebase|ElasticSearch|ClickHouse)\b`)
	osRe = rx.I(`\b(?:running|on|i use|using|my (?:os|operating system) is)\s+` +
		`(Ubuntu\s*\d*\.?\d*|Debian\s*\d*|CentOS\s*\d*|Fedora\s*\d*|` +
		`Arch(?:\s*Linux)?|macOS(?:\s*\w+)?|Windows\s*\d*|Linux\s*\w*)\b`)
	editorRe = rx.I(`\b(?:my (?:editor|ide) is|i (?:use|prefer))\s+` +
		`(VS\s?Code|Visual Studio(?:\s+Code)?|Vim|Neovim|Emacs|` +
		`IntelliJ(?:\s+IDEA)?|PyCharm|WebStorm|Sublime(?:\s+Text)?|` +
		`Atom|Cursor|Zed|Helix|Nano)\b`)
	frameworkRe = rx.I(`\b(?:built with|framework is|stack is|using)\s+` +
		`(React|Angular|Vue(?:\.?js)?|Svelte|Next\.?js|Nuxt|Remix|Astro|` +
		`Django|Flask|FastAPI|Express(?:\.?js)?|NestJS|Rails|Laravel|` +
		`Spring\s?Boot|ASP\.NET|Phoenix|Gin|Fiber|Actix|Rocket)\b`)
	cloudRe = rx.I(`\b(?:deployed on|hosted on|running on|using|on)\s+` +
		`(AWS|GCP|Google\s+Cloud|Azure|Vercel|Netlify|Heroku|` +
		`DigitalOcean|Linode|Fly\.io|Railway|Render)\b`)
	configRe = rx.I(`\b(port|timeout|max[_\s]?retries|rate[_\s]?limit|` +
		`batch[_\s]?size|workers?|threads?|ttl|interval|threshold|` +
		`concurrency|buffer[_\s]?size|max[_\s]?connections)\s+` +
		`(?:is|=|:)\s*(\d[\d.,]*\s*(?:s|ms|sec|seconds?|min|minutes?|hrs?|hours?|mb|gb|kb)?)\b`)
	apiURLRe = rx.I(`\b(?:api|endpoint|url|base[_\s]?url|server)\s+(?:is\s+(?:at\s+)?|(?:url\s+)?(?:is|:)\s*|at\s+)` +
		`(https?://[^\s,;"'<>]{5,120})`)
	codeInRe = rx.I(`\bi\s+(?:usually\s+|mostly\s+|primarily\s+|mainly\s+)?` +
		`(?:code|program|develop|write)\s+(?:in\s+)?` +
		`(` + codingLanguages + `)` +
		`(?:\s+and\s+(` + codingLanguages + `))?`)
	codingStyleRe = rx.I(`\b(?:i (?:like|prefer|want)|keep it|use)\s+` +
		`(concise|verbose|detailed|minimal|simple|clean|dry|` +
		`functional|object[- ]?oriented|OOP|readable|pragmatic|` +
		`strict|loose|explicit|implicit)\s*(?:code|style|approach)?`)
	docsPreferenceRe = rx.I(`\b(?:always\s+(?:write|add|include)\s+(?:docs|documentation|docstrings)|` +
		`(?:no|skip|don'?t need|don'?t want)\s+(?:docs|documentation|docstrings)|` +
		`(?:docs|documentation)\s+(?:required|needed|not needed|optional|mandatory)|` +
		`every\s+(?:function|method|class)\s+(?:needs?|should have)\s+(?:a\s+)?(?:docs?tring|documentation))`)
	testingToolRe = rx.I(`\b(?:i use|we use|prefer|using)\s+` +
		`(pytest|jest|mocha|vitest|cypress|playwright|selenium|` +
		`unittest|rspec|minitest|junit|xunit|nunit|go test)\b`)
)

func extractTechnical(text string, facts *domain.Facts) {
	// "Python 3.11", "Node 18", "React 18.2.0"
	for _, m := range rx.FindAll(versionRe, text) {
		tech := strings.TrimSpace(m.Text)
		name := strings.TrimSpace(rx.Replace(versionSuffix, tech, ""))
		slot := rx.Replace(slotInvalid, rx.Replace(techNameRunes, strings.ToLower(name), "_")+"_version", "")
		if !facts.Has(slot) {
			put(facts, slot, tech)
		}
	}

	singleSlot := []struct {
		slot string
		res  []*rx.Regexp
	}{
		{"database", []*rx.Regexp{databaseIsRe, usingDatabaseRe}},
		{"os", []*rx.Regexp{osRe}},
		{"editor", []*rx.Regexp{editorRe}},
		{"framework", []*rx.Regexp{frameworkRe}},
		{"cloud", []*rx.Regexp{cloudRe}},
	}
	for _, s := range singleSlot {
		if facts.Has(s.slot) {
			continue
		}
		if m, ok := firstMatch(text, s.res...); ok {
			put(facts, s.slot, strings.TrimSpace(m.Group(1)))
		}
	}

	// "port is 8080", "timeout: 30s"
	for _, m := range rx.FindAll(configRe, text) {
		key := rx.Replace(slotSpaces, strings.ToLower(strings.TrimSpace(m.Group(1))), "_")
		if !facts.Has(key) {
			put(facts, key, strings.TrimSpace(m.Group(2)))
		}
	}

	if !facts.Has("api_url") {
		if m, ok := rx.Find(apiURLRe, text); ok {
			put(facts, "api_url", strings.TrimSpace(m.Group(1)))
		}
	}

	if !facts.Has("programming_language") {
		if m, ok := rx.Find(codeInRe, text); ok {
			val := strings.TrimSpace(m.Group(1))
			if m.Has(2) {
				val += " and " + strings.TrimSpace(m.Group(2))
			}
			put(facts, "programming_language", val)
		}
	}

	if !facts.Has("coding_style") {
		if m, ok := rx.Find(codingStyleRe, text); ok {
			put(facts, "coding_style", strings.TrimSpace(m.Group(1)))
		}
	}

	if !facts.Has("docs_preference") {
		if m, ok := rx.Find(docsPreferenceRe, text); ok {
			put(facts, "docs_preference", strings.TrimSpace(m.Text))
		}
	}

	if !facts.Has("testing") {
		if m, ok := rx.Find(testingToolRe, text); ok {
			put(facts, "testing", strings.TrimSpace(m.Group(1)))
		}
	}
}
