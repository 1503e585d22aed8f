package web

// Landing page copy, authored in markdown and rendered through goldmark.
// Keeping the copy here (not in the template) lets the site owner edit it
// without touching markup.

const landingIntro = `We combine expert instruction with innovative learning
techniques to help you achieve academic excellence.`

type landingCard struct {
	Title string
	Body  string // markdown
}

var landingServices = []landingCard{
	{"Personalized Learning", "Custom study plans tailored to your unique learning style and goals."},
	{"1-on-1 Sessions", "Dedicated one-on-one time with expert tutors for focused learning."},
	{"Flexible Scheduling", "Book sessions that fit your schedule, available **3 days a week**."},
	{"CogAT Test Prep", "Comprehensive preparation for CogAT assessments, grades 2-8."},
	{"Homework Help", "Get unstuck and understand concepts with guided assistance."},
	{"Progress Reports", "Regular updates on your academic growth and achievements."},
}

var landingSubjects = []landingCard{
	{"Mathematics", "Up to Precalculus"},
	{"Science", "Biology, Chemistry (up to AP)"},
	{"CogAT Test Prep", "Grades 2-8"},
}

var landingPricing = []landingCard{
	{"In-Person Sessions", "**$25** per hour — face-to-face learning at the tutor's location."},
	{"Online Sessions", "**$20** per hour — convenient virtual tutoring from anywhere."},
}
