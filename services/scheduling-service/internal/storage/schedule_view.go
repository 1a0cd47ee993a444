package storage

// ScheduleView joins the schedule and appointment repositories into the
// read surface the availability engine consumes.
type ScheduleView struct {
	*ScheduleRepository
	*AppointmentRepository
}

func NewScheduleView(schedule *ScheduleRepository, appts *AppointmentRepository) ScheduleView {
	return ScheduleView{ScheduleRepository: schedule, AppointmentRepository: appts}
}
