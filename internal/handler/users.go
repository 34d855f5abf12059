package handler

import (
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/veloce-dev/plantao-manager/backend/internal/domain"
	"github.com/veloce-dev/plantao-manager/backend/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

func (h *Handler) GetAllUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.repository.GetAllUsers()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "usuários obtidos com sucesso", users)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(UserInfoCtx).(*domain.User)
	h.successResponse(w, r, "usuário obtido com sucesso", user)
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username" validate:"required"`
		FullName string `json:"nome_completo" validate:"required"`
		Email    string `json:"email" validate:"required,email"`
		Role     string `json:"tipo" validate:"required,oneof=plantonista gestor admin"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// a senha inicial é gerada aqui e só chega ao usuário pelo email
	password := utils.GenerateRandomPassword(h.config.NewUser.PasswordLength)

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	user := &domain.User{
		Username:     req.Username,
		PasswordHash: string(hashedPassword),
		FullName:     req.FullName,
		Email:        req.Email,
		Role:         domain.Role(req.Role),
	}

	if err := h.repository.CreateUser(user); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch {
			case pgErr.ConstraintName == "usuarios_username_key":
				h.badRequest(w, r, errors.New("username já existe"))
			case pgErr.ConstraintName == "usuarios_email_key":
				h.badRequest(w, r, errors.New("email já existe"))
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.publishMail(r, domain.MailMessage{
		Type: "create_user",
		To:   user.Email,
		Data: domain.CreateUserMailData{
			FullName: req.FullName,
			Username: req.Username,
			Password: password,
		},
	})

	h.successResponse(w, r, "usuário criado com sucesso", user)
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FullName       *string `json:"nome_completo"`
		Email          *string `json:"email" validate:"omitempty,email"`
		Role           *string `json:"tipo" validate:"omitempty,oneof=plantonista gestor admin"`
		IsActive       *bool   `json:"ativo"`
		MaxPlantoesMes *int    `json:"max_plantoes_mes" validate:"omitempty,min=1"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	user := r.Context().Value(UserInfoCtx).(*domain.User)

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Role != nil {
		user.Role = domain.Role(*req.Role)
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.MaxPlantoesMes != nil {
		user.MaxPlantoesMes = *req.MaxPlantoesMes
	}

	if err := h.repository.UpdateUser(user); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch {
			case pgErr.ConstraintName == "usuarios_email_key":
				h.badRequest(w, r, errors.New("email já existe"))
			default:
				h.internalServerError(w, r, err)
			}
		case errors.Is(err, domain.ErrPlantonistaNotFound):
			h.errorResponse(w, r, "o usuário foi alterado por outra pessoa, tente novamente")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "usuário atualizado com sucesso", user)
}
