package handlers

// AppHandlers holds every handler the router mounts.
type AppHandlers struct {
	AuthHandler         *AuthHandler
	NotificationHandler *NotificationHandler
	UpdateHandler       *UpdateHandler
	ActivityHandler     *ActivityHandler
	AnalyticsHandler    *AnalyticsHandler
	CourseHandler       *CourseHandler
}
