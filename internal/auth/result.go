package auth

// Result 是一次策略尝试的结果：要么成功（Identity 非空），要么失败（Reason 非空），不会同时成立。
type Result struct {
	Identity *Identity
	Reason   string
}

func Success(id Identity) Result {
	return Result{Identity: &id}
}

func Failure(reason string) Result {
	if reason == "" {
		reason = MsgAuthRequired
	}
	return Result{Reason: reason}
}

func (r Result) OK() bool {
	return r.Identity != nil
}
