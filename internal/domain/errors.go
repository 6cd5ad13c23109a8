package domain

import "errors"

// Workflow failure kinds, mapped to HTTP statuses and user-facing messages
// at the server boundary. Failures upstream of the conversation write abort
// the flow; failures downstream degrade instead.
var (
	ErrUnauthorized       = errors.New("no authenticated identity")
	ErrUserLookup         = errors.New("user profile unavailable")
	ErrNotFound           = errors.New("conversation not found")
	ErrAlreadyStarted     = errors.New("conversation already started")
	ErrMissingReference   = errors.New("agent or product reference missing")
	ErrVendorConfig       = errors.New("voice vendor configuration failed")
	ErrSessionUnavailable = errors.New("no usable session credential")
	ErrPersistence        = errors.New("row store write failed")
)

// User-facing messages. The product ships a single French locale, so these
// are literal constants rather than a message bundle.
const (
	MsgUnauthorized      = "Non autorisé"
	MsgNotFound          = "Conversation introuvable"
	MsgAlreadyStarted    = "Cette conversation a déjà été démarrée"
	MsgAgentNotFound     = "Agent introuvable"
	MsgProductNotFound   = "Produit introuvable"
	MsgVendorConfig      = "Erreur lors de la configuration de l'agent"
	MsgPersistence       = "Erreur lors de la sauvegarde"
	MsgInternal          = "Erreur interne du serveur"
	MsgAgentConfigured   = "Agent configuré avec succès"
	MsgUserLookupFailure = "Erreur utilisateur"
)
