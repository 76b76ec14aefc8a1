/*
Package catalog resolves symbolic message keys to localized display text.

PURPOSE:
  The core never embeds user-facing strings; it references Keys and the
  catalog turns them into text for the configured locale. Swapping or
  extending locales touches only this package.

LOCALES:
  en - English
  ru - Russian (the service's original deployment language)

COMMAND ALIASES:
  Each canonical command has at least one localized alias (e.g.
  "регистрация" for register). The router consults Aliases() so users can
  type either form.
*/
package catalog

import "fmt"

// Key is a symbolic message identifier.
type Key string

const (
	MsgWelcome                Key = "welcome"
	MsgHelpHeader             Key = "help.header"
	MsgHelpBasic              Key = "help.basic"
	MsgHelpRegister           Key = "help.register"
	MsgHelpBalance            Key = "help.balance"
	MsgHelpEmployee           Key = "help.employee"
	MsgHelpAdmin              Key = "help.admin"
	MsgPromo                  Key = "promo"
	MsgRegisterPrompt         Key = "register.prompt"
	MsgRegistered             Key = "register.done"
	MsgBalance                Key = "balance"
	MsgRegistrationRequired   Key = "registration.required"
	MsgUnknownCommand         Key = "unknown.command"
	MsgAccruePromptPhone      Key = "accrue.prompt.phone"
	MsgAccruePromptAmount     Key = "accrue.prompt.amount"
	MsgAccrualDone            Key = "accrue.done"
	MsgPointsReceived         Key = "accrue.received"
	MsgAdminAccrualNotice     Key = "accrue.admin"
	MsgRedeemPromptPhone      Key = "redeem.prompt.phone"
	MsgRedeemPromptAmount     Key = "redeem.prompt.amount"
	MsgRedeemDone             Key = "redeem.done"
	MsgPointsRedeemed         Key = "redeem.received"
	MsgAdminRedeemNotice      Key = "redeem.admin"
	MsgGrantPromptPhone       Key = "grant.prompt"
	MsgRevokePromptPhone      Key = "revoke.prompt"
	MsgEmployeeAdded          Key = "grant.done"
	MsgEmployeeRemoved        Key = "revoke.done"
	MsgEmployeesOnly          Key = "error.employees_only"
	MsgAdminsOnly             Key = "error.admins_only"
	MsgNotANumber             Key = "error.not_a_number"
	MsgAmountPositive         Key = "error.amount_positive"
	MsgAmountRange            Key = "error.amount_range"
	MsgInsufficientBalance    Key = "error.insufficient"
	MsgAccountNotFound        Key = "error.not_found"
	MsgChatAlreadyRegistered  Key = "error.chat_registered"
	MsgPhoneAlreadyRegistered Key = "error.phone_registered"
	MsgInvalidPhone           Key = "error.invalid_phone"
	MsgCanceled               Key = "cancel.done"
	MsgNothingToCancel        Key = "cancel.nothing"
	MsgInternalError          Key = "error.internal"
)

// =============================================================================
// CATALOG
// =============================================================================

// Catalog resolves keys for a fixed locale. Unknown locales and missing
// keys fall back to English.
type Catalog struct {
	locale string
}

// New creates a catalog for the locale ("en" or "ru").
func New(locale string) *Catalog {
	if _, ok := messages[locale]; !ok {
		locale = "en"
	}
	return &Catalog{locale: locale}
}

// Locale returns the active locale.
func (c *Catalog) Locale() string { return c.locale }

// Text resolves a key and formats it with args.
func (c *Catalog) Text(k Key, args ...any) string {
	tmpl, ok := messages[c.locale][k]
	if !ok {
		tmpl, ok = messages["en"][k]
	}
	if !ok {
		return string(k)
	}
	if len(args) == 0 {
		return tmpl
	}
	return fmt.Sprintf(tmpl, args...)
}

// Aliases returns the localized command aliases for the active locale,
// mapping alias word to canonical command name. The canonical English
// names are always accepted by the router regardless of locale.
func (c *Catalog) Aliases() map[string]string {
	out := make(map[string]string, len(aliases[c.locale]))
	for alias, canonical := range aliases[c.locale] {
		out[alias] = canonical
	}
	return out
}

// =============================================================================
// MESSAGE TABLES
// =============================================================================

var messages = map[string]map[Key]string{
	"en": {
		MsgWelcome:                "Welcome to Coffee Loyalty! Use /help for the list of available commands.",
		MsgHelpHeader:             "Available commands:",
		MsgHelpBasic:              "/start - start using the bot\n/help - list available commands",
		MsgHelpRegister:           "/register - register with your phone number",
		MsgHelpBalance:            "/balance - show your points balance",
		MsgHelpEmployee:           "/addpoints - add points to a customer\n/redeem - redeem a customer's points",
		MsgHelpAdmin:              "/addemployee - grant employee access\n/removeemployee - revoke employee access",
		MsgPromo:                  "🎉 Promotion! 🎉\nBuy 10 cups of coffee and get one free!",
		MsgRegisterPrompt:         "Enter your phone number to register:",
		MsgRegistered:             "You are registered!",
		MsgBalance:                "Your balance: %d points.",
		MsgRegistrationRequired:   "Please register first with /register.",
		MsgUnknownCommand:         "Unknown command. Use /help for the list of available commands.",
		MsgAccruePromptPhone:      "Enter the customer's phone number to add points:",
		MsgAccruePromptAmount:     "Enter the number of points to add:",
		MsgAccrualDone:            "Added %d points to %s. New balance: %d.",
		MsgPointsReceived:         "You received %d points. Thank you for visiting us!",
		MsgAdminAccrualNotice:     "Employee %s added %d points to customer %s.",
		MsgRedeemPromptPhone:      "Enter the customer's phone number to redeem points:",
		MsgRedeemPromptAmount:     "Enter the number of points to redeem (1 to %d):",
		MsgRedeemDone:             "Redeemed %d points from %s. New balance: %d.",
		MsgPointsRedeemed:         "%d points were redeemed from your account. Thank you for visiting us!",
		MsgAdminRedeemNotice:      "Employee %s redeemed %d points from customer %s.",
		MsgGrantPromptPhone:       "Enter the phone number of the employee to add:",
		MsgRevokePromptPhone:      "Enter the phone number of the employee to remove:",
		MsgEmployeeAdded:          "Employee added: %s",
		MsgEmployeeRemoved:        "Employee removed: %s",
		MsgEmployeesOnly:          "This command is available to employees and administrators only.",
		MsgAdminsOnly:             "This command is available to administrators only.",
		MsgNotANumber:             "The number of points must be a number.",
		MsgAmountPositive:         "The number of points must be positive.",
		MsgAmountRange:            "The number of points must be between %d and %d.",
		MsgInsufficientBalance:    "Not enough points on the account.",
		MsgAccountNotFound:        "Account not found.",
		MsgChatAlreadyRegistered:  "This chat is already registered.",
		MsgPhoneAlreadyRegistered: "This phone number is already registered.",
		MsgInvalidPhone:           "That doesn't look like a phone number. Operation canceled.",
		MsgCanceled:               "Canceled.",
		MsgNothingToCancel:        "Nothing to cancel.",
		MsgInternalError:          "Something went wrong. Please try again.",
	},
	"ru": {
		MsgWelcome:                "Добро пожаловать в Coffee Loyalty! Используйте /help для списка доступных команд.",
		MsgHelpHeader:             "Доступные команды:",
		MsgHelpBasic:              "/start или старт - начать использование бота\n/help или помощь - список доступных команд",
		MsgHelpRegister:           "/register или регистрация - регистрация пользователя",
		MsgHelpBalance:            "/balance или баланс - узнать баланс баллов",
		MsgHelpEmployee:           "/addpoints или добавитьбаллы - добавить баллы клиенту\n/redeem или списать - списать баллы",
		MsgHelpAdmin:              "/addemployee или добавитьсотрудника - назначить сотрудника\n/removeemployee или удалитьсотрудника - удалить сотрудника",
		MsgPromo:                  "🎉 Акция! 🎉\nКупите 10 кружек кофе и получите одну кружку в подарок!",
		MsgRegisterPrompt:         "Введите номер телефона для регистрации:",
		MsgRegistered:             "Вы успешно зарегистрированы!",
		MsgBalance:                "Ваш баланс: %d баллов.",
		MsgRegistrationRequired:   "Сначала зарегистрируйтесь с помощью /register.",
		MsgUnknownCommand:         "Неизвестная команда. Используйте /help для списка доступных команд.",
		MsgAccruePromptPhone:      "Введите номер телефона клиента для начисления баллов:",
		MsgAccruePromptAmount:     "Введите количество баллов для начисления:",
		MsgAccrualDone:            "Начислено %d баллов клиенту %s. Новый баланс: %d.",
		MsgPointsReceived:         "Вам начислено %d баллов. Спасибо за использование наших услуг!",
		MsgAdminAccrualNotice:     "Сотрудник (номер: %s) начислил %d баллов клиенту (номер: %s).",
		MsgRedeemPromptPhone:      "Введите номер телефона клиента для списания баллов:",
		MsgRedeemPromptAmount:     "Введите количество баллов для списания (максимум %d):",
		MsgRedeemDone:             "Списано %d баллов у клиента %s. Новый баланс: %d.",
		MsgPointsRedeemed:         "%d баллов были списаны с вашего счета. Спасибо за использование наших услуг!",
		MsgAdminRedeemNotice:      "Сотрудник (номер: %s) списал %d баллов у клиента (номер: %s).",
		MsgGrantPromptPhone:       "Введите номер телефона сотрудника для добавления:",
		MsgRevokePromptPhone:      "Введите номер телефона сотрудника для удаления:",
		MsgEmployeeAdded:          "Сотрудник успешно добавлен: %s",
		MsgEmployeeRemoved:        "Сотрудник успешно удален: %s",
		MsgEmployeesOnly:          "Эта команда доступна только для администраторов и сотрудников.",
		MsgAdminsOnly:             "Эта команда доступна только для администраторов.",
		MsgNotANumber:             "Количество баллов должно быть числом.",
		MsgAmountPositive:         "Количество баллов должно быть положительным.",
		MsgAmountRange:            "Количество баллов должно быть от %d до %d.",
		MsgInsufficientBalance:    "Недостаточно баллов для списания.",
		MsgAccountNotFound:        "Пользователь не найден.",
		MsgChatAlreadyRegistered:  "Пользователь с этим чатом уже зарегистрирован.",
		MsgPhoneAlreadyRegistered: "Номер телефона уже зарегистрирован.",
		MsgInvalidPhone:           "Это не похоже на номер телефона. Операция отменена.",
		MsgCanceled:               "Отменено.",
		MsgNothingToCancel:        "Нечего отменять.",
		MsgInternalError:          "Что-то пошло не так. Попробуйте еще раз.",
	},
}

// =============================================================================
// COMMAND ALIAS TABLES
// =============================================================================

var aliases = map[string]map[string]string{
	"en": {
		// English locale carries no extra aliases; the canonical names
		// themselves are resolved by the router.
	},
	"ru": {
		"старт":              "start",
		"помощь":             "help",
		"регистрация":        "register",
		"баланс":             "balance",
		"добавитьбаллы":      "addpoints",
		"списать":            "redeem",
		"добавитьсотрудника": "addemployee",
		"удалитьсотрудника":  "removeemployee",
		"отмена":             "cancel",
	},
}
