package model

// Role — закрытый набор ролей пользователей. Роли хранятся в базе как строки
// и дополнительно проверяются check-ограничением на таблице users.
type Role string

const (
	RoleUser              Role = "user"
	RoleChecker           Role = "checker"
	RoleRegistrator       Role = "registrator"
	RoleCEO               Role = "ceo"
	RoleBranchAgencyHead  Role = "branch_agency_head"
	RoleBranchChamberHead Role = "branch_chamber_head"
	RoleBranchDeputy      Role = "branch_deputy"
	RoleOnecDeveloper     Role = "onec_developer"
)

// AllRoles возвращает все допустимые роли в порядке их объявления.
func AllRoles() []Role {
	return []Role{
		RoleUser,
		RoleChecker,
		RoleRegistrator,
		RoleCEO,
		RoleBranchAgencyHead,
		RoleBranchChamberHead,
		RoleBranchDeputy,
		RoleOnecDeveloper,
	}
}

// Valid сообщает, входит ли роль в закрытый набор.
func (r Role) Valid() bool {
	for _, known := range AllRoles() {
		if r == known {
			return true
		}
	}
	return false
}

// Action — операция над файлами или пользователями, требующая проверки прав.
type Action string

const (
	ActionApproveAsChecker     Action = "approve_as_checker"
	ActionApproveAsRegistrator Action = "approve_as_registrator"
	ActionRejectFile           Action = "reject_file"
	ActionDirectStatusUpdate   Action = "direct_status_update"
	ActionViewAllFiles         Action = "view_all_files"
	ActionDeleteFile           Action = "delete_file"
	ActionManageUsers          Action = "manage_users"
	ActionViewAnalytics        Action = "view_analytics"
	ActionSendMessages         Action = "send_messages"
)

// roleActions — единая таблица прав: роль -> разрешённые операции.
// Проверка прав выполняется только здесь, а не в каждом обработчике.
var roleActions = map[Role]map[Action]bool{
	RoleChecker: {
		ActionApproveAsChecker:   true,
		ActionRejectFile:         true,
		ActionDirectStatusUpdate: true,
		ActionViewAllFiles:       true,
	},
	RoleRegistrator: {
		ActionApproveAsRegistrator: true,
		ActionRejectFile:           true,
		ActionDirectStatusUpdate:   true,
		ActionViewAllFiles:         true,
		ActionManageUsers:          true,
		ActionSendMessages:         true,
	},
	RoleCEO: {
		ActionViewAllFiles:  true,
		ActionDeleteFile:    true,
		ActionManageUsers:   true,
		ActionViewAnalytics: true,
		ActionSendMessages:  true,
	},
}

// Can сообщает, разрешена ли роли указанная операция.
func (r Role) Can(action Action) bool {
	allowed, ok := roleActions[r]
	if !ok {
		return false
	}
	return allowed[action]
}
