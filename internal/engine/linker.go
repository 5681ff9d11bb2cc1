package engine

import "github.com/AngelCh415/studio-metrics/internal/models"

// LinkVisits tags every new visitor with the teacher of the first booking
// recording the same visit: same email, class name, class date and location.
// Visitors with no such booking, or whose booking names no teacher, get
// models.UnknownTeacher.
func LinkVisits(visitors []models.NewVisitor, bookings []models.Booking) []models.EnrichedClient {
	// email index keeps booking order, so the first match still wins
	byEmail := make(map[string][]int, len(bookings))
	for i, b := range bookings {
		byEmail[b.CustomerEmail] = append(byEmail[b.CustomerEmail], i)
	}

	out := make([]models.EnrichedClient, 0, len(visitors))
	for _, v := range visitors {
		teacher := models.UnknownTeacher
		for _, i := range byEmail[v.Email] {
			b := bookings[i]
			if b.ClassName == v.FirstVisit && b.ClassDate == v.FirstVisitAt && b.Location == v.FirstVisitLocation {
				if b.Teacher != "" {
					teacher = b.Teacher
				}
				break
			}
		}
		out = append(out, models.EnrichedClient{NewVisitor: v, Teacher: teacher})
	}
	return out
}
