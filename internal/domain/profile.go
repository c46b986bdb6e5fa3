package domain

// UserProfile 患者档案（对应 user_profiles 表）
// 写入只允许本人；控制室用户/管理员可读（报警处置需要）
// 不存在是合法状态（表示尚未完成引导流程）
type UserProfile struct {
	Principal Principal `json:"principal" db:"principal"`
	Name      string    `json:"name" db:"name"`
	Age       uint32    `json:"age" db:"age"` // 非负
	Address   string    `json:"address" db:"address"`
}

// EmergencyContact 紧急联系人（对应 emergency_contacts 表）
// 属于唯一一个档案；保留插入顺序
type EmergencyContact struct {
	Name         string `json:"name" db:"name"`
	Phone        string `json:"phone" db:"phone"`
	Relationship string `json:"relationship" db:"relationship"` // Child/Spouse/Friend/Caregiver 等
}

// ConditionNote 病情备注（对应 condition_notes 表）
// 所有权和顺序规则与 EmergencyContact 相同
type ConditionNote struct {
	Name        string `json:"name" db:"name"`
	Type        string `json:"type" db:"note_type"`
	Description string `json:"description" db:"description"`
}

// FullProfile 档案 + 联系人 + 备注的原子快照
// 三者必须来自同一次写入（不允许撕裂读）
type FullProfile struct {
	Profile  UserProfile        `json:"profile"`
	Contacts []EmergencyContact `json:"contacts"`
	Notes    []ConditionNote    `json:"notes"`
}
