// Package chatbot реализует сценарный классификатор запросов поддержки.
// Ответы выбираются из фиксированных вариантов по правилам; никакого
// обучения или внешних вызовов здесь нет, и пакет не зависит от
// состояния корзины или цен.
package chatbot

import (
	"regexp"
	"strings"
)

// Intent представляет распознанное намерение пользователя
type Intent string

const (
	IntentGreet    Intent = "greet"
	IntentThanks   Intent = "thanks"
	IntentBye      Intent = "bye"
	IntentGiftCard Intent = "gift"
	IntentBrand    Intent = "brand"
	IntentShipping Intent = "ship"
	IntentCoupon   Intent = "coupon"
	IntentPayment  Intent = "pay"
	IntentReturns  Intent = "return"
	IntentStock    Intent = "stock"
	IntentSupport  Intent = "support"
	IntentUnknown  Intent = "unknown"
)

// Memory хранит короткую память диалога между сообщениями
type Memory struct {
	LastIntent   Intent         `json:"last_intent,omitempty"`
	LastBrand    string         `json:"last_brand,omitempty"`
	UnknownCount int            `json:"unknown_count"`
	VariantSeen  map[Intent]int `json:"variant_seen,omitempty"`
}

// Response представляет ответ бота с подсказками для продолжения
type Response struct {
	Intent      Intent   `json:"intent"`
	Text        string   `json:"text"`
	Suggestions []string `json:"suggestions,omitempty"`
	Escalate    bool     `json:"escalate"`
}

var greetRe = regexp.MustCompile(`^((c|sc)iao|hey|buon(giorno|asera)|salve)`)

var responses = map[Intent][]string{
	IntentGreet: {
		"Ciao! Sono l'assistente Iany. Come posso aiutarti oggi?",
		"Ehi! Benvenuto su Iany. Dimmi pure come posso darti una mano.",
		"Ciao! Felice di rivederti su Iany. Serve aiuto per scegliere o acquistare?",
	},
	IntentThanks: {
		"Di nulla! Se ti serve altro sono qui.",
		"Figurati! Hai altre domande?",
		"Con piacere! Dimmi pure se posso aiutarti ancora.",
	},
	IntentBye: {
		"A presto e buon shopping!",
		"Grazie della visita! A presto.",
		"Alla prossima! Buona giornata.",
	},
	IntentGiftCard: {
		"Le carte regalo arrivano via email in pochi minuti dopo il pagamento: niente spedizione e nessun costo extra.",
		"Per le gift card ricevi il codice digitale subito dopo il pagamento, direttamente via email.",
		"Le nostre carte regalo sono consegnate istantaneamente via email: nessuna attesa di spedizione.",
	},
	IntentBrand: {
		"Certo! Abbiamo diversi tagli. Puoi filtrare per marca nella sezione Carte Regalo.",
		"Sì, ci sono vari tagli disponibili. Usa il filtro Carte Regalo per trovare velocemente quello giusto.",
		"Assolutamente! Seleziona la marca che ti interessa tra Xbox, PlayStation, Steam e altro.",
	},
	IntentShipping: {
		"Spedizione gratuita sopra 59€. Per i prodotti fisici: 24–48h. Le gift card sono istantanee via email.",
		"Per ordini sopra 59€ la spedizione è gratis. I prodotti fisici arrivano in 1–2 giorni; i codici digitali subito.",
		"Sopra 59€ non paghi la spedizione. Tempi rapidi per il fisico; consegna immediata per gift card.",
	},
	IntentCoupon: {
		"I buoni sconto vengono pubblicati sui nostri canali social ufficiali. Al checkout inseriscili nel campo Codice sconto. Il codice FREESHIP dà spedizione gratuita su un ordine per account, senza minimo di spesa.",
		"Segui i social ufficiali dello store per i coupon attivi. Ricorda: FREESHIP offre la consegna gratuita su un singolo ordine per account, a qualsiasi importo.",
		"I coupon sono comunicati sui nostri social. In checkout inserisci il codice nel campo dedicato. FREESHIP garantisce spedizione gratuita su un ordine per account, senza soglia.",
	},
	IntentPayment: {
		"Accettiamo carte e PayPal. Se vuoi, ti guido passo passo nel pagamento.",
		"Supportiamo carte e PayPal; altri metodi arriveranno presto. Vuoi completare ora l'ordine?",
		"Puoi pagare con carta o PayPal. Dimmi pure se preferisci un metodo specifico.",
	},
	IntentReturns: {
		"Hai 14 giorni di reso per i prodotti fisici in condizioni originali. Per i codici digitali, assistiamo in caso di problemi.",
		"Per i prodotti fisici è previsto il recesso entro 14 giorni. Per i codici, contattaci in caso di malfunzionamento.",
		"I resi sui prodotti fisici sono possibili entro 14 giorni; sui codici digitali valutiamo eventuali anomalie.",
	},
	IntentStock: {
		"Molti articoli sono disponibili subito. Quale prodotto ti interessa?",
		"Disponibilità aggiornate di frequente: dimmi il prodotto e controllo.",
		"Spesso spediamo in giornata per articoli in stock. Che prodotto cerchi?",
	},
	IntentSupport: {
		"Certo! Dimmi pure cosa non ti è chiaro e vediamo insieme.",
		"Sono qui per aiutarti. Raccontami il problema e troviamo la soluzione.",
		"Volentieri: spiegami nel dettaglio e ti supporto passo passo.",
	},
}

var suggestions = map[Intent][]string{
	IntentGreet:    {"Carte regalo", "Spedizione gratuita", "Coupon", "Pagamenti"},
	IntentGiftCard: {"Quanto costa una gift card Steam?", "Tempi di consegna"},
	IntentShipping: {"Quanto costa la spedizione express?", "Spedite all'estero?"},
	IntentCoupon:   {"Dove inserisco il coupon?", "Il mio codice non funziona"},
	IntentPayment:  {"Posso pagare con PayPal?", "La carta non viene accettata"},
	IntentReturns:  {"Come avvio un reso?", "Quanto dura il rimborso?"},
}

const escalateText = "Non voglio farti perdere tempo: se preferisci, ti metto in contatto con la nostra assistenza. Rispondiamo via e-mail molto rapidamente."

// brandKeywords сопоставляются с памятью диалога для уточняющих ответов
var brandKeywords = []string{"xbox", "playstation", "steam", "valorant", "fortnite"}

// Classify определяет намерение по тексту сообщения
func Classify(input string) Intent {
	q := strings.ToLower(strings.TrimSpace(input))
	switch {
	case q == "":
		return IntentUnknown
	case greetRe.MatchString(q):
		return IntentGreet
	case strings.Contains(q, "grazie"):
		return IntentThanks
	case strings.Contains(q, "arrivederci") || (strings.Contains(q, "ciao") && strings.Contains(q, "dopo")):
		return IntentBye
	case strings.Contains(q, "gift") || strings.Contains(q, "carta regalo") || strings.Contains(q, "carte regalo") || strings.Contains(q, "codice regalo"):
		return IntentGiftCard
	case containsAny(q, brandKeywords) || strings.Contains(q, "v-bucks"):
		return IntentBrand
	case strings.Contains(q, "spedizion") || strings.Contains(q, "consegna"):
		return IntentShipping
	case strings.Contains(q, "coupon") || strings.Contains(q, "sconto") || strings.Contains(q, "promo") || strings.Contains(q, "freeship"):
		return IntentCoupon
	case strings.Contains(q, "pagament") || strings.Contains(q, "paypal") || strings.Contains(q, "carta"):
		return IntentPayment
	case strings.Contains(q, "reso") || strings.Contains(q, "resi") || strings.Contains(q, "rimbor") || strings.Contains(q, "recesso"):
		return IntentReturns
	case strings.Contains(q, "disponibil") || strings.Contains(q, "stock"):
		return IntentStock
	case strings.Contains(q, "aiuto") || strings.Contains(q, "support") || strings.Contains(q, "assistenza"):
		return IntentSupport
	default:
		return IntentUnknown
	}
}

// Reply возвращает ответ на сообщение и обновляет память диалога.
// Варианты ответов ротируются по счетчику, чтобы поведение было
// воспроизводимым в тестах.
func Reply(input string, mem *Memory) Response {
	if mem.VariantSeen == nil {
		mem.VariantSeen = make(map[Intent]int)
	}

	intent := Classify(input)
	q := strings.ToLower(input)
	for _, b := range brandKeywords {
		if strings.Contains(q, b) {
			mem.LastBrand = b
			break
		}
	}

	if intent == IntentUnknown {
		mem.UnknownCount++
		mem.LastIntent = IntentUnknown
		if mem.UnknownCount >= 2 {
			return Response{Intent: IntentUnknown, Text: escalateText, Escalate: true}
		}
		return Response{
			Intent:      IntentUnknown,
			Text:        "Non sono sicuro di aver capito. Posso aiutarti con carte regalo, spedizioni, coupon o pagamenti.",
			Suggestions: suggestions[IntentGreet],
		}
	}

	mem.UnknownCount = 0
	mem.LastIntent = intent

	variants := responses[intent]
	idx := mem.VariantSeen[intent] % len(variants)
	mem.VariantSeen[intent]++

	return Response{
		Intent:      intent,
		Text:        variants[idx],
		Suggestions: suggestions[intent],
	}
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
