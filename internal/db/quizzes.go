package db

import (
	"fmt"

	"trivianight/internal/quiz"
)

// LoadAll returns every stored quiz record. Satisfies quiz.Source.
func (d *DB) LoadAll() ([]quiz.Record, error) {
	rows, err := d.conn.Query(`SELECT id, title, data_json FROM quizzes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("loading quizzes: %w", err)
	}
	defer rows.Close()

	var records []quiz.Record
	for rows.Next() {
		var rec quiz.Record
		if err := rows.Scan(&rec.ID, &rec.Title, &rec.DataJSON); err != nil {
			return nil, fmt.Errorf("scanning quiz row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("loading quizzes: %w", err)
	}
	return records, nil
}

// SaveQuiz inserts a quiz (id 0) or replaces an existing one, returning the
// stored id.
func (d *DB) SaveQuiz(id int, title, dataJSON string) (int, error) {
	if id != 0 {
		_, err := d.conn.Exec(d.rebind(`UPDATE quizzes SET title=$1, data_json=$2 WHERE id=$3`), title, dataJSON, id)
		if err != nil {
			return 0, fmt.Errorf("updating quiz %d: %w", id, err)
		}
		return id, nil
	}

	if d.driver == driverSQLite {
		res, err := d.conn.Exec(`INSERT INTO quizzes(title, data_json) VALUES(?, ?)`, title, dataJSON)
		if err != nil {
			return 0, fmt.Errorf("inserting quiz: %w", err)
		}
		newID, err := res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("inserting quiz: %w", err)
		}
		return int(newID), nil
	}

	var newID int
	err := d.conn.QueryRow(`INSERT INTO quizzes(title, data_json) VALUES($1, $2) RETURNING id`, title, dataJSON).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("inserting quiz: %w", err)
	}
	return newID, nil
}
