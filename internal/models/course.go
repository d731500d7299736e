package models

import (
	"time"

	"github.com/google/uuid"
)

// CourseMonth - месяц программы, определяет длительность курса в днях
type CourseMonth string

const (
	MonthJanuary   CourseMonth = "JANUARY"
	MonthFebruary  CourseMonth = "FEBRUARY"
	MonthMarch     CourseMonth = "MARCH"
	MonthApril     CourseMonth = "APRIL"
	MonthMay       CourseMonth = "MAY"
	MonthJune      CourseMonth = "JUNE"
	MonthJuly      CourseMonth = "JULY"
	MonthAugust    CourseMonth = "AUGUST"
	MonthSeptember CourseMonth = "SEPTEMBER"
	MonthOctober   CourseMonth = "OCTOBER"
	MonthNovember  CourseMonth = "NOVEMBER"
	MonthDecember  CourseMonth = "DECEMBER"
)

var monthInfo = map[CourseMonth]struct {
	days        int
	displayName string
}{
	MonthJanuary:   {31, "Январь"},
	MonthFebruary:  {28, "Февраль"},
	MonthMarch:     {31, "Март"},
	MonthApril:     {30, "Апрель"},
	MonthMay:       {31, "Май"},
	MonthJune:      {30, "Июнь"},
	MonthJuly:      {31, "Июль"},
	MonthAugust:    {31, "Август"},
	MonthSeptember: {30, "Сентябрь"},
	MonthOctober:   {31, "Октябрь"},
	MonthNovember:  {30, "Ноябрь"},
	MonthDecember:  {31, "Декабрь"},
}

// Days возвращает количество дней в месяце курса
func (m CourseMonth) Days() int {
	if info, ok := monthInfo[m]; ok {
		return info.days
	}
	return 0
}

// DisplayName возвращает название месяца для отображения
func (m CourseMonth) DisplayName() string {
	if info, ok := monthInfo[m]; ok {
		return info.displayName
	}
	return string(m)
}

// Valid проверяет, что месяц известен
func (m CourseMonth) Valid() bool {
	_, ok := monthInfo[m]
	return ok
}

// Course - месячный курс с ежедневными уроками
type Course struct {
	ID          uuid.UUID   `json:"id" gorm:"type:uuid;primary_key"`
	Title       string      `json:"title" gorm:"not null"`
	Description string      `json:"description"`
	Month       CourseMonth `json:"month"`

	DurationDays int `json:"duration_days"`

	// Порядковый номер курса, определяет последовательность прохождения
	Order int `json:"order" gorm:"column:course_order;uniqueIndex;not null"`

	// Связи
	CreatedByID uuid.UUID `json:"created_by_id" gorm:"type:uuid"`
	CreatedBy   *User     `json:"created_by,omitempty" gorm:"foreignKey:CreatedByID"`
	Lessons     []Lesson  `json:"lessons,omitempty" gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Lesson - урок одного дня курса
type Lesson struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	Title       string    `json:"title" gorm:"not null"`
	Description string    `json:"description"`
	DayNumber   int       `json:"day_number" gorm:"not null;uniqueIndex:idx_lessons_course_day"`

	// Связи
	CourseID uuid.UUID `json:"course_id" gorm:"type:uuid;not null;uniqueIndex:idx_lessons_course_day"`
	Course   *Course   `json:"-" gorm:"foreignKey:CourseID"`
	Videos   []Video   `json:"videos,omitempty" gorm:"foreignKey:LessonID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"created_at"`
}

// CourseEnrollment - запись родителя на курс
type CourseEnrollment struct {
	ID uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`

	// Связи
	UserID   uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_enrollments_user_course"`
	CourseID uuid.UUID `json:"course_id" gorm:"type:uuid;not null;uniqueIndex:idx_enrollments_user_course"`
	Course   *Course   `json:"course,omitempty" gorm:"foreignKey:CourseID"`

	ProgressPercentage int        `json:"progress_percentage" gorm:"default:0"`
	Completed          bool       `json:"completed" gorm:"default:false"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`

	EnrolledAt time.Time `json:"enrolled_at" gorm:"autoCreateTime"`
}
