// Package regime queries the structured zoning tables
// regime_urbanistico and zots_bairros.
package regime

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cidade-aberta/urbanq/internal/db"
	"github.com/cidade-aberta/urbanq/internal/db/postgres"
	"github.com/cidade-aberta/urbanq/internal/domain"
)

// Repository is the Postgres-backed structured store.
type Repository struct {
	pool *postgres.Pool
}

// New creates a regime repository.
func New(pool *postgres.Pool) *Repository {
	return &Repository{pool: pool}
}

const regimeColumns = `id, bairro, zona,
	COALESCE(altura_maxima::text, ''),
	COALESCE(coef_aproveitamento_basico::text, ''),
	COALESCE(coef_aproveitamento_maximo::text, '')`

// FindByNeighborhood returns building parameters for every zone of a
// neighborhood. name must be a canonical registry name, never raw
// query text.
func (r *Repository) FindByNeighborhood(ctx context.Context, name string, limit int) ([]domain.Record, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+regimeColumns+`
		FROM regime_urbanistico
		WHERE bairro = $1
		ORDER BY zona
		LIMIT $2`,
		name, limit)
	if err != nil {
		return nil, db.WrapOp("regime: neighborhood lookup", err)
	}
	return scanRegime(rows)
}

// FindByZone returns building parameters for one zone code.
func (r *Repository) FindByZone(ctx context.Context, code string, limit int) ([]domain.Record, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+regimeColumns+`
		FROM regime_urbanistico
		WHERE zona = $1
		ORDER BY bairro
		LIMIT $2`,
		code, limit)
	if err != nil {
		return nil, db.WrapOp("regime: zone lookup", err)
	}
	return scanRegime(rows)
}

// ZonesForNeighborhood returns the zone membership rows of a
// neighborhood from the denormalized zots_bairros table.
func (r *Repository) ZonesForNeighborhood(ctx context.Context, name string, limit int) ([]domain.Record, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, bairro, zona, total_zonas_no_bairro
		FROM zots_bairros
		WHERE bairro = $1
		ORDER BY zona
		LIMIT $2`,
		name, limit)
	if err != nil {
		return nil, db.WrapOp("regime: zone membership lookup", err)
	}
	defer rows.Close()

	var recs []domain.Record
	for rows.Next() {
		var rec domain.Record
		var bairro, zona string
		var total int
		if err := rows.Scan(&rec.ID, &bairro, &zona, &total); err != nil {
			return nil, db.WrapOp("regime: zone membership scan", err)
		}
		rec.Source = "zots_bairros"
		rec.Title = bairro
		rec.Content = fmt.Sprintf("%s pertence à zona %s (%d zonas no bairro)", bairro, zona, total)
		rec.Metadata = map[string]string{
			"bairro":      bairro,
			"zona":        zona,
			"total_zonas": fmt.Sprintf("%d", total),
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// CountNeighborhoods returns the number of distinct neighborhoods with
// zoning data.
func (r *Repository) CountNeighborhoods(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(DISTINCT bairro) FROM zots_bairros`).Scan(&n)
	if err != nil {
		return 0, db.WrapOp("regime: neighborhood count", err)
	}
	return n, nil
}

// CountZones returns the number of distinct zone codes.
func (r *Repository) CountZones(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(DISTINCT zona) FROM zots_bairros`).Scan(&n)
	if err != nil {
		return 0, db.WrapOp("regime: zone count", err)
	}
	return n, nil
}

func scanRegime(rows *sql.Rows) ([]domain.Record, error) {
	defer rows.Close()

	var recs []domain.Record
	for rows.Next() {
		var rec domain.Record
		var bairro, zona, altura, caBasico, caMaximo string
		if err := rows.Scan(&rec.ID, &bairro, &zona, &altura, &caBasico, &caMaximo); err != nil {
			return nil, db.WrapOp("regime: scan", err)
		}
		rec.Source = "regime_urbanistico"
		rec.Title = fmt.Sprintf("%s - %s", bairro, zona)
		rec.Content = fmt.Sprintf(
			"Bairro %s, zona %s: altura máxima %s, coeficiente de aproveitamento básico %s, máximo %s",
			bairro, zona, orUnset(altura), orUnset(caBasico), orUnset(caMaximo))
		rec.Metadata = map[string]string{
			"bairro":        bairro,
			"zona":          zona,
			"altura_maxima": altura,
			"ca_basico":     caBasico,
			"ca_maximo":     caMaximo,
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func orUnset(v string) string {
	if v == "" {
		return "não definido"
	}
	return v
}
