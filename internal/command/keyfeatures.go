package command

import (
	"regexp"
	"strings"
)

// featureSet maps service-name keywords to the four features attached to a
// new line item. Long keywords match as substrings; short acronyms match as
// whole words only, so "maintenance" is not mistaken for "ai".
type featureSet struct {
	keywords []string
	acronyms []string
	features []string
}

var defaultFeatures = []string{
	"Professional service delivery",
	"Quality assurance",
	"Timely completion",
	"Customer support",
}

// Order matters: the first set whose keywords match wins.
var featureSets = []featureSet{
	{
		keywords: []string{"monitor", "display", "screen"},
		features: []string{"Full HD / 4K display support", "HDMI and VGA connectivity", "Low power consumption", "Adjustable stand design"},
	},
	{
		keywords: []string{"laptop", "computer"},
		acronyms: []string{"pc"},
		features: []string{"High-performance processor", "Fast SSD storage", "Long battery life", "Modern connectivity ports"},
	},
	{
		keywords: []string{"keyboard", "mouse", "peripheral"},
		features: []string{"Ergonomic design", "Wireless connectivity", "Long battery life", "Compatible with multiple devices"},
	},
	{
		keywords: []string{"chatbot", "artificial intelligence"},
		acronyms: []string{"ai"},
		features: []string{"24/7 automated customer support", "Multi-language support", "Real-time analytics dashboard", "Secure data handling"},
	},
	{
		keywords: []string{"software", "application"},
		acronyms: []string{"app"},
		features: []string{"User-friendly interface", "Cross-platform compatibility", "Regular updates and support", "Secure data encryption"},
	},
	{
		keywords: []string{"website", "web development", "web design"},
		features: []string{"Mobile-responsive design", "Fast loading performance", "SEO-friendly structure", "Secure hosting integration"},
	},
	{
		keywords: []string{"e-commerce", "online store", "shop"},
		features: []string{"Secure payment gateway", "Inventory management system", "Order tracking functionality", "Mobile shopping experience"},
	},
	{
		keywords: []string{"hosting", "server", "cloud"},
		features: []string{"99.9% uptime guarantee", "Scalable infrastructure", "24/7 technical support", "Data backup and recovery"},
	},
	{
		keywords: []string{"marketing", "promotion"},
		features: []string{"Social media campaign management", "Targeted ad optimization", "Performance tracking reports", "Lead generation strategy"},
	},
	{
		keywords: []string{"search engine"},
		acronyms: []string{"seo"},
		features: []string{"Keyword research and optimization", "On-page and off-page SEO", "Monthly performance reports", "Google ranking improvement"},
	},
	{
		keywords: []string{"social media"},
		acronyms: []string{"smm"},
		features: []string{"Content creation and scheduling", "Multi-platform management", "Engagement analytics", "Community growth strategy"},
	},
	{
		keywords: []string{"design", "graphic", "logo"},
		features: []string{"Professional design concepts", "Multiple revision rounds", "High-resolution deliverables", "Brand consistency"},
	},
	{
		keywords: []string{"interface"},
		acronyms: []string{"ui", "ux"},
		features: []string{"User-centered design approach", "Interactive prototypes", "Usability testing", "Design system creation"},
	},
	{
		keywords: []string{"consulting", "consultant", "advisory"},
		features: []string{"Expert industry knowledge", "Customized solutions", "Strategic planning", "Ongoing support"},
	},
	{
		keywords: []string{"training", "workshop", "course"},
		features: []string{"Expert-led sessions", "Hands-on practice", "Course materials included", "Certificate of completion"},
	},
	{
		keywords: []string{"maintenance", "support", "service"},
		features: []string{"Regular system updates", "24/7 technical assistance", "Preventive maintenance", "Quick response time"},
	},
	{
		keywords: []string{"network", "it infrastructure", "system"},
		features: []string{"Secure network setup", "Performance monitoring", "Backup and disaster recovery", "Remote access support"},
	},
	{
		keywords: []string{"security", "cyber", "firewall"},
		features: []string{"Threat detection and prevention", "Regular security audits", "Data encryption", "Compliance certification"},
	},
	{
		keywords: []string{"content", "writing"},
		features: []string{"SEO-optimized content", "Original and plagiarism-free", "Multiple content formats", "Fast turnaround time"},
	},
	{
		keywords: []string{"photography", "video", "photo"},
		features: []string{"Professional equipment", "High-resolution output", "Post-production editing", "Multiple format delivery"},
	},
}

var wordPattern = regexp.MustCompile(`[a-z0-9]+`)

// GenerateKeyFeatures returns four short selling points for a service name.
func GenerateKeyFeatures(name string) []string {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "" {
		return clone(defaultFeatures)
	}

	words := make(map[string]bool)
	for _, w := range wordPattern.FindAllString(normalized, -1) {
		words[w] = true
	}

	for _, set := range featureSets {
		for _, kw := range set.keywords {
			if strings.Contains(normalized, kw) {
				return clone(set.features)
			}
		}

		for _, a := range set.acronyms {
			if words[a] {
				return clone(set.features)
			}
		}
	}

	return clone(defaultFeatures)
}

func clone(s []string) []string {
	return append([]string(nil), s...)
}
