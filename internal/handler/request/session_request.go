package request

import "wallet-session/internal/model"

// SetFormRequest 整体替换交易表单; 空字段允许, 发送时才校验
type SetFormRequest struct {
	AddressTo string `json:"addressTo"`
	Amount    string `json:"amount"`
	Keyword   string `json:"keyword" binding:"max=256"`
	Message   string `json:"message" binding:"max=1024"`
}

func (r SetFormRequest) Draft() model.DraftTransaction {
	return model.DraftTransaction{
		AddressTo: r.AddressTo,
		Amount:    r.Amount,
		Keyword:   r.Keyword,
		Message:   r.Message,
	}
}

// ChangeFieldRequest 修改表单的一个字段, 字段名在路径里
type ChangeFieldRequest struct {
	Value *string `json:"value" binding:"required"`
}
