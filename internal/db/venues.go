package db

import (
	"database/sql"
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("not found")

type Venue struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	LogoURL string `json:"logo_url"`
}

func (d *DB) GetVenue(id int) (*Venue, error) {
	var v Venue
	err := d.conn.QueryRow(d.rebind(`SELECT id, name, logo_url FROM venues WHERE id=$1`), id).
		Scan(&v.ID, &v.Name, &v.LogoURL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading venue %d: %w", id, err)
	}
	return &v, nil
}

func (d *DB) ListVenues() ([]Venue, error) {
	rows, err := d.conn.Query(`SELECT id, name, logo_url FROM venues ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing venues: %w", err)
	}
	defer rows.Close()

	var venues []Venue
	for rows.Next() {
		var v Venue
		if err := rows.Scan(&v.ID, &v.Name, &v.LogoURL); err != nil {
			return nil, fmt.Errorf("scanning venue row: %w", err)
		}
		venues = append(venues, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing venues: %w", err)
	}
	return venues, nil
}

func (d *DB) CreateVenue(name, logoURL string) (int, error) {
	if d.driver == driverSQLite {
		res, err := d.conn.Exec(`INSERT INTO venues(name, logo_url) VALUES(?, ?)`, name, logoURL)
		if err != nil {
			return 0, fmt.Errorf("inserting venue: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("inserting venue: %w", err)
		}
		return int(id), nil
	}

	var id int
	err := d.conn.QueryRow(`INSERT INTO venues(name, logo_url) VALUES($1, $2) RETURNING id`, name, logoURL).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting venue: %w", err)
	}
	return id, nil
}
