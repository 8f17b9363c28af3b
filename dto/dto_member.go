package dto

type SetLevelRequest struct {
	Level string `json:"level"`
}

type SetStatusRequest struct {
	Status string `json:"status"`
}

type RoleRequest struct {
	Role string `json:"role"`
}

type AssignRolesRequest struct {
	Roles []string `json:"roles"`
}

type AnnouncementRequest struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}
