package domain

const (
	GreetingReply = "¡Hola! 😊 Soy el asistente de soporte TI de Hermes. ¿En qué puedo ayudarte?"

	HelpdeskContact = "Si necesitas contactar al Helpdesk de Hermes, utiliza:\n" +
		"• Correo: ithelpdesk@hermes.com.pe\n" +
		"• Teléfono: (01) 617 4000 anexo 5555"

	// DefaultQuestion is sent when the caller supplies an empty question.
	DefaultQuestion = "Hola"

	ticketHint = "Si necesitas ayuda, puedes generar un ticket haciendo clic en el botón " +
		"**Crear Ticket iTop** en la parte inferior del chat.\n"

	NoAnswerReply      = "No pude generar una respuesta en este momento. " + ticketHint + HelpdeskContact
	UselessAnswerReply = "No pude generar una respuesta útil. " + ticketHint + HelpdeskContact

	MinAnswerRunes = 5
)
