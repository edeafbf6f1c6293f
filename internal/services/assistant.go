package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	LangEnglish = "en"
	LangAmharic = "am"
)

const generateTimeout = 15 * time.Second

const systemPrompt = `You are the virtual health assistant of TENA, an Ethiopian hospital and doctor booking service. Follow these rules:
1. Give short, general first-aid and self-care guidance for the symptoms described. Never diagnose and never prescribe.
2. Always recommend booking a consultation with a doctor through TENA for a proper assessment.
3. For chest pain, difficulty breathing, heavy bleeding or loss of consciousness, tell the user to seek emergency care immediately.
4. Answer in the language the user asks for: "en" is English, "am" is Amharic.
5. Keep answers under 80 words.`

type category struct {
	name     string
	keywords []string
}

// Checked in order; the first category with a matching keyword wins.
var categories = []category{
	{"fever", []string{"fever", "temperature", "hot", "febrile"}},
	{"cough", []string{"cough", "coughing", "cold"}},
	{"headache", []string{"headache", "head pain", "head"}},
	{"stomach", []string{"stomach", "abdomen", "belly", "nausea"}},
	{"chest", []string{"chest", "heart", "chest pain"}},
	{"general", []string{"sick", "ill", "unwell", "disease", "symptom"}},
}

var replies = map[string]map[string]string{
	LangEnglish: {
		"fever":    "Based on your symptoms, you may have a fever. I recommend: 1) Rest and stay hydrated, 2) Take paracetamol if needed, 3) Monitor your temperature, 4) Consult a doctor if fever persists over 3 days or exceeds 39°C.",
		"cough":    "For cough symptoms, I suggest: 1) Stay hydrated with warm fluids, 2) Use honey (if not allergic), 3) Avoid smoking, 4) Rest adequately, 5) See a doctor if cough lasts more than 2 weeks.",
		"headache": "For headache relief: 1) Rest in a quiet, dark room, 2) Stay hydrated, 3) Take pain relievers if needed, 4) Avoid screen time, 5) Consult a doctor if severe or persistent.",
		"stomach":  "Stomach concerns require attention: 1) Eat light, easily digestible foods, 2) Stay hydrated, 3) Avoid spicy/greasy foods, 4) Consider antacids, 5) See a doctor if symptoms persist.",
		"chest":    "Chest symptoms should be taken seriously. Please: 1) Rest immediately, 2) Avoid strenuous activity, 3) Monitor for shortness of breath, 4) Seek immediate medical attention if pain is severe or radiates to arm/jaw.",
		"general":  "Thank you for contacting TENA. For proper assessment, please provide more details about your symptoms. I recommend consulting with a healthcare professional for accurate diagnosis and treatment.",
	},
	LangAmharic: {
		"fever":   "ከስምሞችዎ ስለሚመስል የትኛውን ሐኪም እንደሚጠቁሙ አስታውቁ። በተለይ ሙቀት ካለዎት ፣ ብዙ ውሃ ይጠጡ ፣ እና በሽታው ከ3 ቀን በላይ ከቆየ ሐኪም ይመልከቱ።",
		"cough":   "ስለሚስማሙ ፣ በርካታ ፈሳሽ ይጠጡ ፣ ማር (ከተቃረኑ ከሌለ) ይጠቀሙ ፣ እና ለ2 ሳምንት በላይ ከቆየ ሐኪም ይመልከቱ።",
		"general": "ለ TENA በማለፍዎ እናመሰግናለን። ለትክክለኛ ምርመራ እና ህክምና ሐኪም መስማማትን እመክራለን።",
	},
}

// KeywordReply picks a canned reply for message. Languages or categories
// without a reply fall back to the language's general reply, then English.
func KeywordReply(message, language string) string {
	lower := strings.ToLower(message)
	topic := "general"
	for _, c := range categories {
		if containsAny(lower, c.keywords) {
			topic = c.name
			break
		}
	}

	if lang, ok := replies[language]; ok {
		if r, ok := lang[topic]; ok {
			return r
		}
		if r, ok := lang["general"]; ok {
			return r
		}
	}
	return replies[LangEnglish]["general"]
}

const GeneralPhysician = "General Physician"

var symptomSpecialties = []struct {
	symptom   string
	specialty string
}{
	{"fever", GeneralPhysician},
	{"cough", GeneralPhysician},
	{"headache", "Neurologist"},
	{"stomach", "Gastroenterologist"},
	{"chest", "Cardiologist"},
	{"skin", "Dermatologist"},
	{"bones", "Orthopedic"},
	{"children", "Pediatrician"},
	{"mental", "Psychiatrist"},
}

// SuggestSpecialties maps symptoms to specialties in first-seen order. The
// general physician is always first.
func SuggestSpecialties(symptoms string) []string {
	lower := strings.ToLower(symptoms)
	out := []string{GeneralPhysician}
	seen := map[string]bool{GeneralPhysician: true}
	for _, m := range symptomSpecialties {
		if strings.Contains(lower, m.symptom) && !seen[m.specialty] {
			seen[m.specialty] = true
			out = append(out, m.specialty)
		}
	}
	return out
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// Generator produces a free-form reply for a chat message.
type Generator interface {
	Generate(ctx context.Context, message, language string) (string, error)
}

// GeminiGenerator answers through the Gemini API.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiGenerator{client: client, model: model}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, message, language string) (string, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
	}
	prompt := fmt.Sprintf("Language: %s\n\n%s", language, message)

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), config)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.New("empty response")
	}
	return text, nil
}

// Assistant answers chat messages, preferring the generator when one is
// configured and falling back to keyword replies.
type Assistant struct {
	gen Generator
	log *zap.Logger
}

func NewAssistant(gen Generator, log *zap.Logger) *Assistant {
	return &Assistant{gen: gen, log: log}
}

func (a *Assistant) Reply(ctx context.Context, message, language string) string {
	if language == "" {
		language = LangEnglish
	}
	if a.gen != nil {
		ctx, cancel := context.WithTimeout(ctx, generateTimeout)
		defer cancel()
		reply, err := a.gen.Generate(ctx, message, language)
		if err == nil {
			return reply
		}
		a.log.Warn("generative reply failed, using keyword reply", zap.Error(err))
	}
	return KeywordReply(message, language)
}
