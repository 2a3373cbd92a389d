// Package common — errors.go определяет пользовательские ошибки,
// которые используются во всех модулях бота.
// Эти ошибки позволяют обработчикам различать типы проблем
// и отправлять пользователю понятные сообщения.
package common

import "errors"

// Ошибки хранилища
var (
	// ErrCorruptData — сохранённый снапшот не удалось разобрать
	ErrCorruptData = errors.New("данные хранилища повреждены")
)

// Ошибки экономики (очки, подарки, магазин)
var (
	// ErrInsufficientFunds — недостаточно очков на счёте
	ErrInsufficientFunds = errors.New("недостаточно очков на счёте")
	// ErrInvalidAmount — некорректная сумма (отрицательная или ноль там, где нужен плюс)
	ErrInvalidAmount = errors.New("некорректная сумма")
	// ErrBalanceOverflow — баланс вышел бы за пределы int64
	ErrBalanceOverflow = errors.New("сумма слишком большая")
	// ErrSelfGift — попытка подарить очки самому себе
	ErrSelfGift = errors.New("нельзя дарить очки самому себе")
	// ErrItemNotFound — товара с таким id нет в магазине
	ErrItemNotFound = errors.New("товар не найден")
)

// Ошибки админки
var (
	// ErrPermissionDenied — у пользователя нет прав на операцию
	ErrPermissionDenied = errors.New("у вас нет прав администратора")
	// ErrWrongPassword — неверный пароль
	ErrWrongPassword = errors.New("неверный пароль")
	// ErrTooManyAttempts — слишком много неудачных попыток входа
	ErrTooManyAttempts = errors.New("слишком много попыток, подождите 1 час")
)
