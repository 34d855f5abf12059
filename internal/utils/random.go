package utils

import (
	"math/rand"
	"strings"

	"github.com/veloce-dev/plantao-manager/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

var commonFirstNames = []string{
	"Ana", "Beatriz", "Bruno", "Camila", "Carlos", "Daniela", "Diego", "Eduardo",
	"Fernanda", "Gabriel", "Helena", "João", "Juliana", "Larissa", "Lucas",
	"Mariana", "Mateus", "Patrícia", "Pedro", "Rafael", "Renata", "Thiago",
}
var commonSurnames = []string{
	"Silva", "Santos", "Oliveira", "Souza", "Lima", "Pereira", "Ferreira",
	"Costa", "Rodrigues", "Almeida", "Nascimento", "Carvalho", "Araújo",
	"Ribeiro", "Gomes", "Martins", "Barbosa", "Rocha",
}

func GenerateRandomBrazilianName() string {
	first := commonFirstNames[rand.Intn(len(commonFirstNames))]
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	return first + " " + surname
}

var accentFold = strings.NewReplacer(
	"á", "a", "â", "a", "ã", "a", "à", "a",
	"é", "e", "ê", "e",
	"í", "i",
	"ó", "o", "ô", "o", "õ", "o",
	"ú", "u", "ü", "u",
	"ç", "c",
)

var digits = "0123456789"

// GenerateUsernameFromName monta um username ascii a partir do nome completo,
// com um sufixo numérico para reduzir colisões.
func GenerateUsernameFromName(fullName string) string {
	username := accentFold.Replace(strings.ToLower(fullName))
	username = strings.ReplaceAll(username, " ", ".")

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rand.Intn(len(digits))])
	}

	return username
}

var roles = []domain.Role{
	domain.RolePlantonista,
	domain.RolePlantonista,
	domain.RolePlantonista,
	domain.RoleGestor,
}

// GenerateRandomRole favorece plantonistas, que são a maioria na prática.
func GenerateRandomRole() domain.Role {
	return roles[rand.Intn(len(roles))]
}

func GenerateRandomUser(password string, emailDomainName string) (*domain.User, error) {
	fullName := GenerateRandomBrazilianName()
	username := GenerateUsernameFromName(fullName)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: string(passwordHash),
		FullName:     fullName,
		Email:        strings.ReplaceAll(username, ".", "_") + "@" + emailDomainName,
		Role:         GenerateRandomRole(),
	}

	return user, nil
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomPassword(length int) string {
	random_password := make([]rune, length)
	for i := range random_password {
		random_password[i] = letters[rand.Intn(len(letters))]
	}
	return string(random_password)
}
