package filter

// Labels produced by the trend classifier.
const (
	LabelRising    = "rising"
	LabelDeclining = "declining"
	LabelStable    = "stable"
)

// CategoryOther is the skill category for names no rule recognizes.
const CategoryOther = "Other"

// DefaultBannedKeywords is the content-safety list applied to generated summaries.
var DefaultBannedKeywords = []string{
	"explicit", "vulgar", "hate", "racist", "sexist", "discriminatory",
	"harassment", "abuse", "illegal", "harmful", "dangerous",
}

// DefaultRisingKeywords mark skills whose synthetic demand grows over time.
var DefaultRisingKeywords = []string{
	"typescript", "kubernetes", "rust", "go", "terraform", "system design",
}

// DefaultDecliningKeywords mark skills whose synthetic demand shrinks over time.
var DefaultDecliningKeywords = []string{
	"angular", "jquery", "php", "flash",
}

// TrendRules builds the rising/declining rule set. Rising is checked first.
func TrendRules(rising, declining []string) []Rule {
	return []Rule{
		{Label: LabelRising, Keywords: rising},
		{Label: LabelDeclining, Keywords: declining},
	}
}

// DefaultCategoryRules groups skill names into display categories.
func DefaultCategoryRules() []Rule {
	return []Rule{
		{Label: "Programming Languages", Keywords: []string{"python", "javascript", "java", "c++", "c#", "go", "rust", "typescript"}},
		{Label: "Frontend", Keywords: []string{"react", "vue", "angular", "html5", "css3", "tailwind", "bootstrap"}},
		{Label: "Backend", Keywords: []string{"django", "flask", "fastapi", "spring", "nodejs", "express", ".net"}},
		{Label: "DevOps", Keywords: []string{"docker", "kubernetes", "terraform", "jenkins", "gitlab", "circleci", "aws", "gcp"}},
		{Label: "Cloud", Keywords: []string{"aws", "azure", "gcp", "ec2", "s3", "lambda", "firestore"}},
		{Label: "Databases", Keywords: []string{"sql", "mysql", "postgresql", "mongodb", "redis", "elasticsearch"}},
		{Label: "Data", Keywords: []string{"machine learning", "deep learning", "tensorflow", "pytorch", "data science"}},
		{Label: "Tools", Keywords: []string{"git", "jira", "slack", "figma", "adobe"}},
	}
}
