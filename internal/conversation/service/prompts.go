package service

import (
	"fmt"

	"github.com/assistchatbot-debug/dnai-sales-sub000/platform/phone"
)

// Deterministic reply templates. The confirmation prompt is rendered from a
// template rather than asked of the oracle so it always shows the exact
// stored name and phone next to the confirm / edit choices.

func confirmationPrompt(lang, name, rawPhone string) string {
	displayPhone := phone.NormalizeE164(rawPhone)
	switch lang {
	case "en":
		return fmt.Sprintf(
			"Please check your contact details:\n\nName: %s\nPhone: %s\n\nIs everything correct? Reply \"yes\" to confirm, or choose to change the name or the phone.",
			name, displayPhone)
	case "kk":
		return fmt.Sprintf(
			"Байланыс деректеріңізді тексеріңіз:\n\nАты: %s\nТелефон: %s\n\nБәрі дұрыс па? Растау үшін \"иә\" деп жазыңыз немесе атын не телефонын өзгертуді таңдаңыз.",
			name, displayPhone)
	default:
		return fmt.Sprintf(
			"Проверьте, пожалуйста, контактные данные:\n\nИмя: %s\nТелефон: %s\n\nВсё верно? Напишите \"да\" для подтверждения или выберите, что изменить: имя или телефон.",
			name, displayPhone)
	}
}

func askNamePrompt(lang string) string {
	switch lang {
	case "en":
		return "What name should we use instead?"
	case "kk":
		return "Қай атты жазайық?"
	default:
		return "Как вас записать? Напишите имя."
	}
}

func askPhonePrompt(lang string) string {
	switch lang {
	case "en":
		return "Please send the correct phone number."
	case "kk":
		return "Дұрыс телефон нөмірін жіберіңіз."
	default:
		return "Напишите, пожалуйста, правильный номер телефона."
	}
}

func confirmedReply(lang string) string {
	switch lang {
	case "en":
		return "Thank you! Your details are confirmed, our manager will contact you shortly."
	case "kk":
		return "Рахмет! Деректеріңіз расталды, менеджер жақын арада хабарласады."
	default:
		return "Спасибо! Данные подтверждены, наш менеджер свяжется с вами в ближайшее время."
	}
}

func greetingReply(lang string) string {
	switch lang {
	case "en":
		return "Hello! How can we help you today?"
	case "kk":
		return "Сәлеметсіз бе! Сізге қалай көмектесе аламыз?"
	default:
		return "Здравствуйте! Чем можем помочь?"
	}
}

// fallbackReply is the neutral sentence returned when the oracle fails.
func fallbackReply(lang string) string {
	switch lang {
	case "en":
		return "Sorry, I could not process that right now. Please try again in a moment."
	case "kk":
		return "Кешіріңіз, қазір жауап бере алмадым. Сәлден кейін қайталап көріңіз."
	default:
		return "Извините, не получилось обработать сообщение. Попробуйте, пожалуйста, ещё раз чуть позже."
	}
}

// voiceReply acknowledges a voice message; transcription is not wired on any
// channel, so the visitor is asked to type instead.
func voiceReply(lang string) string {
	switch lang {
	case "en":
		return "Please send your question as text."
	case "kk":
		return "Сұрағыңызды мәтінмен жіберіңіз."
	default:
		return "Напишите, пожалуйста, вопрос текстом."
	}
}

func systemPrompt(companyName, lang string) string {
	name := companyName
	if name == "" {
		name = "компании"
	}
	base := fmt.Sprintf(
		"Ты — вежливый консультант %s. Отвечай кратко и по делу, помогай клиенту с вопросами о товарах и услугах. Если клиент ещё не оставил имя и номер телефона, мягко попроси их, не повторяясь в каждом сообщении. Не выдумывай цены и условия, которых не знаешь.",
		name)
	switch lang {
	case "en":
		return base + " Отвечай на английском языке."
	case "kk":
		return base + " Жауапты қазақ тілінде бер."
	default:
		return base
	}
}
