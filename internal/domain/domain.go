// Package domain defines the closed set of writer personas. Each domain
// carries its categories, supported content types, and writer prompt as
// data; selection is a total lookup that falls back to a default persona.
package domain

import "github.com/topicalmd/contentpipe/internal/model"

// Domain identifiers
const (
	JointPain     = "joint_pain"
	MusclePain    = "muscle_pain"
	ProductReview = "product_review"
)

// Persona is one domain specialist configuration
type Persona struct {
	Name         string
	DisplayName  string
	Categories   []string
	ContentTypes []model.ContentType
	// PromptFile names the embedded writer system prompt in the agent package
	PromptFile string
}

var personas = map[string]Persona{
	JointPain: {
		Name:         JointPain,
		DisplayName:  "Dr. Sarah Chen, Rheumatology Writer",
		Categories:   []string{"arthritis", "joint-pain", "knee-pain"},
		ContentTypes: []model.ContentType{model.ContentTypeReview, model.ContentTypeBestFor, model.ContentTypeComparison, model.ContentTypeFAQ},
		PromptFile:   "writer_joint_pain_system.txt",
	},
	MusclePain: {
		Name:         MusclePain,
		DisplayName:  "Dr. Marcus Rivera, Sports Medicine Writer",
		Categories:   []string{"muscle-pain", "sports", "back-pain"},
		ContentTypes: []model.ContentType{model.ContentTypeReview, model.ContentTypeBestFor, model.ContentTypeComparison, model.ContentTypeFAQ},
		PromptFile:   "writer_muscle_pain_system.txt",
	},
	ProductReview: {
		Name:        ProductReview,
		DisplayName: "Alex Kim, Consumer Health Analyst",
		// Cross-domain persona, matches all product categories.
		Categories: []string{
			"arthritis", "joint-pain", "muscle-pain", "sports",
			"back-pain", "neuropathy", "nerve-pain", "general_pain",
			"capsaicin", "lidocaine", "cbd", "natural_arnica", "prescription",
		},
		ContentTypes: []model.ContentType{model.ContentTypeReview, model.ContentTypeComparison},
		PromptFile:   "writer_product_review_system.txt",
	},
}

// Active lists the domain names the research agent may assign
var Active = []string{JointPain, MusclePain, ProductReview}

// ForName returns the persona for a domain name. Unrecognized domains get
// the joint-pain persona so the writer never fails on a bad assignment.
func ForName(name string) Persona {
	if p, ok := personas[name]; ok {
		return p
	}
	return personas[JointPain]
}

// Valid reports whether name is a recognized domain
func Valid(name string) bool {
	_, ok := personas[name]
	return ok
}

// MatchesProduct reports whether a product falls under this domain
func (p Persona) MatchesProduct(product model.Product) bool {
	for _, c := range p.Categories {
		if product.Category == c || product.UseCase == c {
			return true
		}
	}
	return false
}
