package hasher

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Cost — стоимость bcrypt (10 раундов), как в исходном бэкенде
const Cost = bcrypt.DefaultCost

// Hash хэширует пароль через bcrypt, соль генерируется автоматически,
// поэтому два вызова с одним паролем дают разные хэши
func Hash(password string) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), Cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	return hash, nil
}

// Verify сравнивает пароль с сохраненным хэшем.
// Любая ошибка (несовпадение, битый хэш, пустой ввод) — это просто false,
// наружу ошибки не отдаем
func Verify(password string, hash []byte) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
}
