package auth

import (
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

func HashPassword(password string) ([]byte, error) {
	if password == "" {
		return nil, fmt.Errorf("密码不能为空")
	}
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
}

// dummyHash 用于 hash 无法解析时仍执行一次完整的 bcrypt 比较，避免通过耗时区分“hash 格式错误”与“密码错误”。
var dummyHash = sync.OnceValue(func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("gatehouse-dummy-password"), bcrypt.DefaultCost)
	if err != nil {
		panic(fmt.Sprintf("生成 dummy hash 失败: %v", err))
	}
	return h
})

var compareHashAndPassword = bcrypt.CompareHashAndPassword

// CheckPassword 无论 hash 是否可解析都只执行一次 bcrypt 比较；hash 为空时用于“用户不存在”的等耗时分支。
func CheckPassword(hash []byte, password string) bool {
	if _, err := bcrypt.Cost(hash); err != nil {
		_ = compareHashAndPassword(dummyHash(), []byte(password))
		return false
	}
	return compareHashAndPassword(hash, []byte(password)) == nil
}
