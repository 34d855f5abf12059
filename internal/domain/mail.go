package domain

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type CreateUserMailData struct {
	FullName string `json:"nomeCompleto"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type AtribuicaoMailData struct {
	FullName string `json:"nomeCompleto"`
	Data     string `json:"data"`
	Turno    string `json:"turno"`
	Gestor   string `json:"gestor"`
}

type RemocaoMailData struct {
	FullName string `json:"nomeCompleto"`
	Data     string `json:"data"`
	Turno    string `json:"turno"`
	Gestor   string `json:"gestor"`
}
