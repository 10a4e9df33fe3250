package domain

import (
	"context"
	"errors"
)

var (
	// ErrStoreNotFound — запрошенный магазин не существует. Ошибка запроса:
	// транзакция не открывается, заказ не создаётся.
	ErrStoreNotFound = errors.New("store not found")
	// ErrProductNotFound — товар каталога не существует.
	ErrProductNotFound = errors.New("product not found")
	// ErrInventoryNotFound — у магазина нет строки остатков для товара.
	// Для вызывающего неотличимо от "магазин не торгует этим товаром".
	ErrInventoryNotFound = errors.New("inventory row not found")
	// ErrInsufficientStock — запрошенное количество превышает остаток.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrOrderNotFound — заказ не найден в репозитории.
	ErrOrderNotFound = errors.New("order not found")
	// ErrItemProductInvalid — некорректный идентификатор товара в заявке.
	ErrItemProductInvalid = errors.New("item product_id must be greater than zero")
	// ErrItemQtyInvalid — некорректное количество в заявке (<= 0).
	ErrItemQtyInvalid = errors.New("item quantity_requested must be greater than zero")
	// ErrLockWaitTimeout — ожидание блокировки строки остатков превысило
	// таймаут. Попытка безопасна для повтора: ничего не зафиксировано.
	ErrLockWaitTimeout = errors.New("inventory lock wait timeout")
	// ErrDeductExceedsStock — списание превышает текущий остаток.
	// Нарушение контракта вызывающей стороны: достаточность проверяется
	// до вызова Deduct.
	ErrDeductExceedsStock = errors.New("deduction exceeds available quantity")
	// ErrLockNotHeld — списание без предварительно захваченной блокировки
	// строки в рамках текущей транзакции.
	ErrLockNotHeld = errors.New("inventory row is not locked by this transaction")
	// ErrTxFinished — операция над уже завершённой транзакцией.
	ErrTxFinished = errors.New("transaction already finished")
	// ErrQueryTooShort — автодополнение требует минимум 3 символа.
	ErrQueryTooShort = errors.New("minimum 3 characters required")
)

// IsTransient сообщает, является ли ошибка временной и безопасной для
// повтора с нуля (после отката ничего не сохраняется).
func IsTransient(err error) bool {
	return errors.Is(err, ErrLockWaitTimeout) ||
		errors.Is(err, context.DeadlineExceeded)
}
