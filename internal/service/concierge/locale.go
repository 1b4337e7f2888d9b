package concierge

import "github.com/lejockey/concierge/backend/internal/i18n"

// LanguageDirective is prepended to every guest message so the model answers in the UI language.
func LanguageDirective(lang i18n.Language) string {
	return lang.T(
		"[Note système : L'utilisateur parle Français. Réponds en Français.]\n",
		"[System Note: User speaks English. Reply in English.]\n",
	)
}

// UnavailableText 无法创建对话时的提示
func UnavailableText(lang i18n.Language) string {
	return lang.T(
		"Désolé, je ne suis pas disponible pour le moment. Veuillez demander au barman.",
		"Sorry, I am not available at the moment. Please ask the bartender.",
	)
}

// QuotaText 重试后仍被限流时的提示
func QuotaText(lang i18n.Language) string {
	return lang.T(
		"⚠️ Désolé, le concierge reçoit trop de demandes en ce moment. Veuillez patienter une minute avant de réessayer.",
		"⚠️ Sorry, the concierge is receiving too many requests right now. Please wait a minute before trying again.",
	)
}

// GlitchText 其他错误时的提示
func GlitchText(lang i18n.Language) string {
	return lang.T(
		"Oups, j'ai eu un petit problème technique. On en reparle plus tard ?",
		"Oops, I had a little technical glitch. Let's talk later?",
	)
}

// OrderAckText 模型最终文本为空时的替代文案
func OrderAckText(lang i18n.Language) string {
	return lang.T("Commande prise en compte.", "Order received.")
}

// GreetingText 新会话的欢迎语
func GreetingText(lang i18n.Language) string {
	return lang.T(
		"Salut ! Je suis ton barman virtuel. \n\nJe peux te conseiller des cocktails, te donner des recettes ou appeler un taxi.\n\nQuelle est ton envie du moment ?",
		"Hi! I'm your virtual bartender. \n\nI can suggest cocktails, share recipes, or call a cab.\n\nWhat are you in the mood for?",
	)
}

// OrderConfirmationText 结账后追加到对话中的确认文案
func OrderConfirmationText(lang i18n.Language) string {
	return lang.T("Merci ! Votre commande est en cuisine.", "Thanks! Your order is being prepared.")
}

// TranscriptionInstruction asks for a plain transcript and forbids "no audio received" answers.
func TranscriptionInstruction(lang i18n.Language) string {
	return lang.T(
		"Transcris cet audio en texte. Si l'audio est vide ou incompréhensible, retourne une chaîne vide. Ne réponds JAMAIS que tu n'as pas reçu de fichier audio.",
		"Transcribe this audio to text. If audio is empty or unclear, return empty string. NEVER respond that you didn't receive an audio file.",
	)
}
